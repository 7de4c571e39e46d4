package flowstate

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxIdle matches the security config's MaxSessionAge default.
const DefaultMaxIdle = 30 * time.Minute

// Registry maps browser session ids to their Scope. Scopes idle for longer than
// maxIdle are dropped on access and by Evict.
type Registry struct {
	mu      sync.Mutex
	scopes  map[string]*Scope
	maxIdle time.Duration
	now     func() time.Time
}

type RegistryOption func(*Registry)

func WithMaxIdle(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.maxIdle = d
		}
	}
}

func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		scopes:  make(map[string]*Scope),
		maxIdle: DefaultMaxIdle,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the live scope for id.
func (r *Registry) Get(id string) (*Scope, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	scope, ok := r.scopes[id]
	if !ok {
		return nil, false
	}
	if r.expired(scope, now) {
		delete(r.scopes, id)
		return nil, false
	}
	scope.touch(now)
	return scope, true
}

// Acquire returns the scope for id, creating a scope under a fresh id when id
// is unknown or expired. The returned id is the one the caller must keep.
func (r *Registry) Acquire(id string) (string, *Scope) {
	if scope, ok := r.Get(id); ok {
		return id, scope
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	newID := uuid.NewString()
	scope := NewScope()
	scope.touch(r.now())
	r.scopes[newID] = scope
	return newID, scope
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scopes, id)
}

// Evict drops every idle scope and returns how many were removed.
func (r *Registry) Evict() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, scope := range r.scopes {
		if r.expired(scope, now) {
			delete(r.scopes, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scopes)
}

func (r *Registry) expired(scope *Scope, now time.Time) bool {
	return now.Sub(scope.idleSince()) > r.maxIdle
}
