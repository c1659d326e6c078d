// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/ankibridge/internal/logging"
)

// PeriodicService runs task every interval until canceled. A failing task
// is logged and retried on the next tick; only maxFailures consecutive
// failures end Serve with an error so the supervisor can back off.
type PeriodicService struct {
	name        string
	interval    time.Duration
	task        func(ctx context.Context) error
	maxFailures int
}

// NewPeriodicService builds a periodic task. A non-positive interval means
// five minutes.
func NewPeriodicService(name string, interval time.Duration, task func(ctx context.Context) error) *PeriodicService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &PeriodicService{
		name:        name,
		interval:    interval,
		task:        task,
		maxFailures: 3,
	}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := p.task(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failures++
				logging.Warn().Err(err).Str("service", p.name).Int("consecutive_failures", failures).
					Msg("periodic task failed")
				if failures >= p.maxFailures {
					return fmt.Errorf("%s: %d consecutive failures: %w", p.name, failures, err)
				}
				continue
			}
			failures = 0
			logging.Debug().Str("service", p.name).Dur("took", time.Since(start)).Msg("periodic task done")
		}
	}
}

// String implements fmt.Stringer.
func (p *PeriodicService) String() string {
	return p.name
}
