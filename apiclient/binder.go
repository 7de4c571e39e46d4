// Package apiclient calls the remote time-series API with the session's
// bearer token.
package apiclient

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Session supplies access tokens and is logged out when the API answers 401.
type Session interface {
	GetValidAccessToken(ctx context.Context) (string, bool)
	Logout() string
}

// Binder is an http.RoundTripper that authenticates every request.
type Binder struct {
	session Session
	base    http.RoundTripper
}

// NewBinder wraps base (http.DefaultTransport when nil).
func NewBinder(session Session, base http.RoundTripper) *Binder {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Binder{session: session, base: base}
}

// RoundTrip attaches "Authorization: Bearer <token>" when the session has a
// valid token, otherwise sends the request as is. A 401 response logs the
// session out; the response itself is returned unchanged.
func (b *Binder) RoundTrip(req *http.Request) (*http.Response, error) {
	if accessToken, ok := b.session.GetValidAccessToken(req.Context()); ok {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := b.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		log.Warn().Str("url", req.URL.Redacted()).Msg("api rejected credentials, logging out")
		b.session.Logout()
	}
	return resp, nil
}
