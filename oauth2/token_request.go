package oauth2

import (
	"fmt"
	"net/url"
)

// TokenRequest holds the form parameters posted to the token endpoint.
type TokenRequest struct {
	GrantType GrantType
	ClientID  string

	// Code and CodeVerifier are set for the authorization_code grant. The
	// server compares SHA256(CodeVerifier) with the stored code_challenge.
	Code         string
	CodeVerifier string
	RedirectURI  string

	// RefreshToken is set for the refresh_token grant.
	RefreshToken string
}

func ParseTokenRequest(form url.Values) TokenRequest {
	return TokenRequest{
		GrantType:    GrantType(form.Get("grant_type")),
		ClientID:     form.Get("client_id"),
		Code:         form.Get("code"),
		CodeVerifier: form.Get("code_verifier"),
		RedirectURI:  form.Get("redirect_uri"),
		RefreshToken: form.Get("refresh_token"),
	}
}

// Validate checks the parameters required by the request's grant type.
func (r TokenRequest) Validate() error {
	if r.ClientID == "" {
		return fmt.Errorf("%w: client_id", ErrMissingParameter)
	}
	switch r.GrantType {
	case AuthorizationCodeGrant:
		if r.Code == "" {
			return fmt.Errorf("%w: code", ErrMissingParameter)
		}
		if r.RedirectURI == "" {
			return fmt.Errorf("%w: redirect_uri", ErrMissingParameter)
		}
		return ValidateCodeVerifier(r.CodeVerifier)
	case RefreshTokenCodeGrant:
		if r.RefreshToken == "" {
			return fmt.Errorf("%w: refresh_token", ErrMissingParameter)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidGrantType, r.GrantType)
}
