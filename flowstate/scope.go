package flowstate

import (
	"sync"
	"time"
)

// Scope is the state of one browser session. The callback guard belongs to the
// callback handler, the exchange guard to the PKCE engine; they are distinct sets.
type Scope struct {
	mu            sync.Mutex
	flow          *FlowState
	postLoginPath string
	lastUsed      time.Time

	callbackGuard *Guard
	exchangeGuard *Guard
}

func NewScope() *Scope {
	return &Scope{
		callbackGuard: NewGuard(),
		exchangeGuard: NewGuard(),
		lastUsed:      time.Now(),
	}
}

// SetFlow replaces any in-flight flow state.
func (s *Scope) SetFlow(f FlowState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flow = &f
}

// Flow returns the stored flow state, if any.
func (s *Scope) Flow() (FlowState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flow == nil {
		return FlowState{}, false
	}
	return *s.flow, true
}

func (s *Scope) ClearFlow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flow = nil
}

func (s *Scope) CallbackGuard() *Guard { return s.callbackGuard }
func (s *Scope) ExchangeGuard() *Guard { return s.exchangeGuard }

// SetPostLoginPath remembers where to send the user once login completes.
func (s *Scope) SetPostLoginPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postLoginPath = path
}

// ConsumePostLoginPath returns and forgets the post-login path.
func (s *Scope) ConsumePostLoginPath() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.postLoginPath
	s.postLoginPath = ""
	return path, path != ""
}

func (s *Scope) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = now
}

func (s *Scope) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
