package history

import (
	"context"
	"errors"

	"balanceboard/internal/artifact"
)

// Store persists finalized decision records.
type Store interface {
	Save(ctx context.Context, rec artifact.DecisionRecord) error
	Get(ctx context.Context, id string) (artifact.DecisionRecord, error)
	// ListByUser returns the user's records, newest first. limit <= 0 means
	// DefaultListLimit.
	ListByUser(ctx context.Context, userID string, limit int) ([]artifact.DecisionRecord, error)
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 200
)

var ErrNotFound = errors.New("decision record not found")

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
