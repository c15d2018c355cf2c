package session

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type registryEntry struct {
	run  *Run
	seen time.Time
}

// Registry holds live runs for transports that address them by id. The
// least recently used run is evicted past size, and a run idle longer than
// ttl is dropped on its next lookup.
type Registry struct {
	mu    sync.Mutex
	cache *lru.Cache[string, registryEntry]
	ttl   time.Duration
	now   func() time.Time
}

func NewRegistry(size int, ttl time.Duration) (*Registry, error) {
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New[string, registryEntry](size)
	if err != nil {
		return nil, err
	}
	return &Registry{cache: cache, ttl: ttl, now: time.Now}, nil
}

func (r *Registry) Put(run *Run) {
	if r == nil || run == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Add(run.id, registryEntry{run: run, seen: r.now()})
}

// Get returns the run and refreshes its idle timer.
func (r *Registry) Get(id string) (*Run, error) {
	if r == nil {
		return nil, ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	now := r.now()
	if r.ttl > 0 && now.Sub(e.seen) > r.ttl {
		r.cache.Remove(id)
		return nil, ErrNotFound
	}
	e.seen = now
	r.cache.Add(id, e)
	return e.run, nil
}

func (r *Registry) Delete(id string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Remove(id)
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}
