// Package session is the process-wide authentication state of the dashboard:
// the cached token bundle, login and logout, and the access token used for API
// calls.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/tsdash/flowstate"
	"github.com/jrsteele09/tsdash/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Flow is the part of the PKCE engine the session drives.
type Flow interface {
	StartLoginRedirect(scope *flowstate.Scope) (string, error)
	RefreshTokens(ctx context.Context, refreshToken string) (token.Bundle, error)
	StartLogoutRedirect(idTokenHint string) string
}

type Session struct {
	mu     sync.RWMutex
	tokens token.Bundle
	has    bool

	flow  Flow
	store *token.Store
	skew  time.Duration
	now   func() time.Time

	coalesce bool
	refresh  singleflight.Group
}

type Option func(*Session)

// WithSkew sets the tolerance applied when judging access token expiry.
func WithSkew(skew time.Duration) Option {
	return func(s *Session) {
		s.skew = skew
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithRefreshCoalescing makes concurrent GetValidAccessToken calls share one
// refresh request.
func WithRefreshCoalescing() Option {
	return func(s *Session) {
		s.coalesce = true
	}
}

// New creates the session and loads the persisted bundle.
func New(flow Flow, store *token.Store, opts ...Option) *Session {
	s := &Session{
		flow:  flow,
		store: store,
		skew:  token.DefaultSkew,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reload()
	return s
}

// Reload replaces the cache with the persisted bundle.
func (s *Session) Reload() {
	b, ok := s.store.Load()
	s.set(b, ok)
}

// Tokens returns the cached bundle.
func (s *Session) Tokens() (token.Bundle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens, s.has
}

// IsAuthenticated reports whether a bundle is cached and its access token is
// not expired.
func (s *Session) IsAuthenticated() bool {
	b, ok := s.Tokens()
	return ok && !token.IsExpired(b.AccessToken, s.skew, s.now())
}

// Claims decodes the cached access token.
func (s *Session) Claims() (token.Claims, bool) {
	b, ok := s.Tokens()
	if !ok {
		return token.Claims{}, false
	}
	return token.DecodeClaims(b.AccessToken)
}

// Login starts a login in scope and returns the authorization URL.
func (s *Session) Login(scope *flowstate.Scope) (string, error) {
	return s.flow.StartLoginRedirect(scope)
}

// Logout forgets every token. It returns the IdP logout URL when an ID token
// was held, otherwise "".
func (s *Session) Logout() string {
	current, ok := s.store.Load()
	if !ok {
		current, ok = s.Tokens()
	}
	s.clear()
	log.Info().Msg("session logged out")

	if ok && current.IDToken != "" {
		return s.flow.StartLogoutRedirect(current.IDToken)
	}
	return ""
}

// GetValidAccessToken returns an unexpired access token, refreshing it when
// needed. A failed refresh ends the session.
func (s *Session) GetValidAccessToken(ctx context.Context) (string, bool) {
	b, ok := s.Tokens()
	if !ok {
		b, ok = s.store.Load()
		if !ok {
			return "", false
		}
	}

	if !token.IsExpired(b.AccessToken, s.skew, s.now()) {
		return b.AccessToken, true
	}
	if !b.HasRefreshToken() {
		return "", false
	}

	refreshed, err := s.doRefresh(ctx, b.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("token refresh failed, ending session")
		s.clear()
		return "", false
	}
	s.set(refreshed, true)
	return refreshed.AccessToken, true
}

func (s *Session) doRefresh(ctx context.Context, refreshToken string) (token.Bundle, error) {
	if !s.coalesce {
		return s.flow.RefreshTokens(ctx, refreshToken)
	}
	v, err, shared := s.refresh.Do(refreshToken, func() (any, error) {
		return s.flow.RefreshTokens(context.WithoutCancel(ctx), refreshToken)
	})
	if err != nil {
		return token.Bundle{}, err
	}
	if shared {
		log.Debug().Msg("joined in-flight token refresh")
	}
	return v.(token.Bundle), nil
}

func (s *Session) set(b token.Bundle, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens, s.has = b, ok
	if !ok {
		s.tokens = token.Bundle{}
	}
}

func (s *Session) clear() {
	if err := s.store.Clear(); err != nil {
		log.Err(err).Msg("failed to clear token store")
	}
	s.set(token.Bundle{}, false)
}
