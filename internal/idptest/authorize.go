package idptest

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/jrsteele09/tsdash/oauth2"
)

// Authorize plays the user signing in at the authorization endpoint: it
// validates the authorization URL and returns the code the IdP would put on
// the callback. The code is bound to the request's PKCE challenge and
// redirect URI and can be redeemed once.
//
// Codes that were not issued here are accepted by the token endpoint as is.
func (s *Server) Authorize(authURL string) (string, error) {
	u, err := url.Parse(authURL)
	if err != nil {
		return "", err
	}
	if got, want := u.Scheme+"://"+u.Host+u.Path, s.RealmURL()+"/protocol/openid-connect/auth"; got != want {
		return "", fmt.Errorf("authorization endpoint %q, want %q", got, want)
	}

	req := oauth2.ParseAuthorizationRequest(u.Query())
	if err := req.Validate(); err != nil {
		return "", err
	}
	if req.ClientID != ClientID {
		return "", fmt.Errorf("unknown client %q", req.ClientID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	code := fmt.Sprintf("authz-%d", len(s.authorized)+len(s.redeemed)+1)
	s.authorized[code] = req
	return code, nil
}

// redeem checks an authorization_code grant against the code's authorization
// request. Must be called without s.mu held.
func (s *Server) redeem(req oauth2.TokenRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.redeemed[req.Code] {
		return errors.New("code already redeemed")
	}
	authz, ok := s.authorized[req.Code]
	if !ok {
		return nil
	}
	delete(s.authorized, req.Code)
	s.redeemed[req.Code] = true

	if req.RedirectURI != authz.RedirectURI {
		return errors.New("redirect_uri does not match the authorization request")
	}
	if !oauth2.CheckCodeChallenge(authz.CodeChallenge, req.CodeVerifier, authz.CodeChallengeMethod) {
		return errors.New("PKCE verification failed")
	}
	return nil
}
