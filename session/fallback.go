package session

import (
	"context"
	"sync"
	"time"
)

// Fallback is the process-local in-memory store used while the durable store
// is unreachable. It has no expiry and no cross-process visibility: a session
// recorded only here lives until process restart. That is a known
// degraded-durability state, deliberately visible through MetricStoreFallback
// rather than silently masked.
//
// Fallback is shared mutable state touched by every concurrent request
// handler, so all access goes through the mutex. It is injected into the
// Registry (one owned instance per process), never a package-level singleton,
// so tests can substitute their own instance and assert degrade behavior
// deterministically.
type Fallback struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewFallback creates an empty fallback store.
func NewFallback() *Fallback {
	return &Fallback{m: make(map[string]string)}
}

var _ Store = (*Fallback)(nil)

// Put records key -> value. The TTL is ignored; the fallback store has no
// expiry concept.
func (f *Fallback) Put(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[key] = value
	return nil
}

// Get returns the value for key, or [ErrNotFound].
func (f *Fallback) Get(_ context.Context, key string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	value, ok := f.m[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (f *Fallback) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, key)
	return nil
}

// Expire is a no-op: fallback entries never expire.
func (f *Fallback) Expire(context.Context, string, time.Duration) error {
	return nil
}

// Len reports the number of recorded entries.
func (f *Fallback) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.m)
}
