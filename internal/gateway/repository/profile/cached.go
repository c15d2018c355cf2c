package profile

import (
	"context"
	"strings"

	"balanceboard/internal/artifact"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedProvider memoizes profiles per user, including users without one.
// Errors are not cached.
type CachedProvider struct {
	inner Provider
	cache *lru.Cache[string, *artifact.PersonalizationContext]
}

func NewCachedProvider(inner Provider, size int) (*CachedProvider, error) {
	if size <= 0 {
		size = 512
	}
	cache, err := lru.New[string, *artifact.PersonalizationContext](size)
	if err != nil {
		return nil, err
	}
	return &CachedProvider{inner: inner, cache: cache}, nil
}

func (c *CachedProvider) FetchContext(ctx context.Context, userID string) (*artifact.PersonalizationContext, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	if p, ok := c.cache.Get(userID); ok {
		return p, nil
	}
	p, err := c.inner.FetchContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.cache.Add(userID, p)
	return p, nil
}

// Invalidate drops the cached profile, e.g. after new chunks are written.
func (c *CachedProvider) Invalidate(userID string) {
	c.cache.Remove(strings.TrimSpace(userID))
}
