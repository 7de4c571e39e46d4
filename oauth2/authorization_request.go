package oauth2

import (
	"fmt"
	"net/url"
	"strings"
)

// AuthorizationRequest holds the query parameters the client sends to the
// authorization endpoint.
type AuthorizationRequest struct {
	ClientID     string
	ResponseType ResponseType

	// RedirectURI must exactly match a URI registered for the client.
	RedirectURI string

	// Scope is space separated, e.g. "openid profile email".
	Scope string

	// State is echoed back on the callback; the client compares it to detect CSRF.
	State string

	CodeChallenge       string
	CodeChallengeMethod CodeMethodType
}

func ParseAuthorizationRequest(q url.Values) AuthorizationRequest {
	return AuthorizationRequest{
		ClientID:            q.Get("client_id"),
		ResponseType:        ResponseType(q.Get("response_type")),
		RedirectURI:         q.Get("redirect_uri"),
		Scope:               q.Get("scope"),
		State:               q.Get("state"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: CodeMethodType(q.Get("code_challenge_method")),
	}
}

// Scopes splits Scope into its tokens.
func (r AuthorizationRequest) Scopes() []string {
	return strings.Fields(r.Scope)
}

// Validate applies the rules for a public client using PKCE.
func (r AuthorizationRequest) Validate() error {
	if r.ClientID == "" {
		return fmt.Errorf("%w: client_id", ErrMissingParameter)
	}
	if r.ResponseType != CodeResponseType {
		return fmt.Errorf("%w: %q", ErrInvalidResponseType, r.ResponseType)
	}
	if err := validateRedirectURI(r.RedirectURI); err != nil {
		return err
	}
	if err := validateState(r.State); err != nil {
		return err
	}
	return ValidateCodeChallenge(r.CodeChallenge, r.CodeChallengeMethod)
}

func validateRedirectURI(uri string) error {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil || uri == "" {
		return ErrInvalidRedirectURI
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidRedirectURI)
	}
	if u.Fragment != "" || strings.Contains(uri, "#") {
		return fmt.Errorf("%w: must not contain a fragment", ErrInvalidRedirectURI)
	}
	return nil
}

// validateState requires a state long enough to be unguessable.
func validateState(state string) error {
	if len(state) < 8 {
		return fmt.Errorf("%w: must be at least 8 characters", ErrInvalidState)
	}
	if strings.TrimSpace(state) != state {
		return fmt.Errorf("%w: must not contain leading or trailing whitespace", ErrInvalidState)
	}
	return nil
}
