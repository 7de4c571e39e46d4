package flowstate

import "sync"

// Guard is a set of CallbackKeys that have been (or are being) processed.
type Guard struct {
	mu   sync.Mutex
	keys map[CallbackKey]struct{}
}

func NewGuard() *Guard {
	return &Guard{keys: make(map[CallbackKey]struct{})}
}

func (g *Guard) IsMarked(key CallbackKey) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.keys[key]
	return ok
}

// Mark adds key and reports whether it was newly added. A false return means
// another caller already holds the key.
func (g *Guard) Mark(key CallbackKey) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.keys[key]; ok {
		return false
	}
	g.keys[key] = struct{}{}
	return true
}

// Unmark removes key so the same callback may be retried.
func (g *Guard) Unmark(key CallbackKey) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
}
