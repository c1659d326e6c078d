// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package api

import "errors"

var (
	// ErrMalformedRequest is returned when the envelope cannot be decoded.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrInvalidParams is returned when an action's params fail to decode
	// or validate.
	ErrInvalidParams = errors.New("invalid params")

	// ErrUnsupportedAction is returned for action names not in the table.
	ErrUnsupportedAction = errors.New("unsupported action")

	// ErrNestedMulti rejects a multi action inside another multi.
	ErrNestedMulti = errors.New("multi actions cannot be nested")
)
