// Package session keeps analysis results between requests. A session is
// created by an analysis run and expires after a TTL; nothing here is durable.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"skillbridge/internal/domain"
)

var ErrNotFound = errors.New("analysis session not found")

// Store holds AnalysisState values by id.
type Store interface {
	Put(ctx context.Context, state *domain.AnalysisState) error
	Get(ctx context.Context, id string) (*domain.AnalysisState, error)
	// Update applies fn to the stored state and saves the result. The TTL is not extended.
	Update(ctx context.Context, id string, fn func(*domain.AnalysisState) error) (*domain.AnalysisState, error)
}

func encode(state *domain.AnalysisState) ([]byte, error) {
	b, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", state.ID, err)
	}
	return b, nil
}

func decode(b []byte) (*domain.AnalysisState, error) {
	var state domain.AnalysisState
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &state, nil
}
