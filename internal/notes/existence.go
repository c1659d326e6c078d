// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package notes

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/ankibridge/internal/logging"
	"github.com/tomtom215/ankibridge/internal/metrics"
	"github.com/tomtom215/ankibridge/internal/models"
)

// CheckExistence reports, per candidate and in input order, whether a note
// could be added without duplicating an existing first field (true = can add).
//
// A batch sharing one note type is answered with a single batched lookup when
// the store supports it. If that note type does not exist every answer is
// false. Mixed batches fall back to one QueryExists per candidate.
func (s *Service) CheckExistence(ctx context.Context, candidates []models.NoteCandidate) ([]bool, error) {
	results := make([]bool, len(candidates))
	if len(candidates) == 0 {
		return results, nil
	}

	if s.dups != nil && sameModel(candidates) {
		return s.checkBatched(ctx, candidates, results)
	}

	metrics.RecordExistenceCheck("per_item", len(candidates))
	for i := range candidates {
		c := &candidates[i]
		exists, err := s.store.QueryExists(ctx, c.FieldName, c.FieldValue)
		if err != nil {
			return nil, fmt.Errorf("failed to look up candidate %d: %w", i, err)
		}
		results[i] = !exists
	}
	return results, nil
}

func (s *Service) checkBatched(ctx context.Context, candidates []models.NoteCandidate, results []bool) ([]bool, error) {
	modelName := candidates[0].ModelName
	modelID, err := s.store.ResolveModelID(ctx, modelName, 0)
	if errors.Is(err, ErrModelNotFound) {
		metrics.RecordExistenceCheck("fail_closed", len(candidates))
		logging.Ctx(ctx).Debug().Str("model", modelName).Int("candidates", len(candidates)).
			Msg("note type not found, rejecting all candidates")
		return results, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve note type %q: %w", modelName, err)
	}

	values := make([]string, len(candidates))
	for i := range candidates {
		values[i] = candidates[i].FieldValue
	}

	duplicates, err := s.dups.FindDuplicates(ctx, modelID, values)
	if err != nil {
		return nil, fmt.Errorf("failed to find duplicates: %w", err)
	}

	metrics.RecordExistenceCheck("batched", len(candidates))
	for i := range results {
		results[i] = !duplicates[i]
	}
	return results, nil
}

func sameModel(candidates []models.NoteCandidate) bool {
	first := candidates[0].ModelName
	for i := 1; i < len(candidates); i++ {
		if candidates[i].ModelName != first {
			return false
		}
	}
	return true
}
