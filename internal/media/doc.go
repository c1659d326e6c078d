// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

// Package media manages the collection media folder.
//
// Store writes files through an afero filesystem and keeps a badger index
// from content hash to filename, so identical bytes stored under different
// names resolve to one file. The filename a write returns is the one
// callers must reference: it can differ from the requested name when the
// content already exists or the name is taken by different content.
//
// Fetcher downloads media referenced by URL, rate limited and guarded by a
// circuit breaker so one dead host cannot stall every request.
package media
