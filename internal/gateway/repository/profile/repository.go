package profile

import (
	"context"
	"strings"
	"sync"

	"balanceboard/internal/artifact"
)

// Provider returns a user's personalization, or nil when there is none.
type Provider interface {
	FetchContext(ctx context.Context, userID string) (*artifact.PersonalizationContext, error)
}

// chunkSeparator joins a user's stored context chunks into one bio.
const chunkSeparator = "\n\n"

// merge builds the profile from stored chunks. Stores keep no risk
// preference yet, so MEDIUM is assumed.
func merge(chunks []string) *artifact.PersonalizationContext {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return &artifact.PersonalizationContext{
		OccupationOrBio: strings.Join(parts, chunkSeparator),
		RiskTolerance:   artifact.RiskMedium,
	}
}

// MemoryProvider serves chunks held in process.
type MemoryProvider struct {
	mu     sync.RWMutex
	chunks map[string][]string
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{chunks: make(map[string][]string)}
}

func (m *MemoryProvider) AddChunk(_ context.Context, userID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID = strings.TrimSpace(userID)
	m.chunks[userID] = append(m.chunks[userID], content)
	return nil
}

func (m *MemoryProvider) FetchContext(_ context.Context, userID string) (*artifact.PersonalizationContext, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return merge(m.chunks[strings.TrimSpace(userID)]), nil
}
