package history

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"balanceboard/internal/artifact"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]artifact.DecisionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]artifact.DecisionRecord),
	}
}

func (s *MemoryStore) Save(_ context.Context, rec artifact.DecisionRecord) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if err := checkRecord(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (artifact.DecisionRecord, error) {
	if s == nil {
		return artifact.DecisionRecord{}, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[strings.TrimSpace(id)]
	if !ok {
		return artifact.DecisionRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string, limit int) ([]artifact.DecisionRecord, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	s.mu.RLock()
	out := make([]artifact.DecisionRecord, 0, 16)
	for _, rec := range s.data {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if n := clampLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func checkRecord(rec artifact.DecisionRecord) error {
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("record id is required")
	}
	if strings.TrimSpace(rec.ChosenDecision) == "" {
		return fmt.Errorf("chosen decision is required")
	}
	return nil
}
