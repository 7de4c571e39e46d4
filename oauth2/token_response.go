package oauth2

// TokenResponse represents the response from an OAuth2 token request (RFC 6749 §5.1),
// as returned by the identity provider's token endpoint for both the
// authorization_code and refresh_token grants.
type TokenResponse struct {
	// AccessToken is the JWT sent as "Authorization: Bearer <access_token>".
	AccessToken *string `json:"access_token,omitempty"`

	// IdToken is the OpenID Connect ID token. Only present when "openid" was requested.
	// It is kept for the logout redirect's id_token_hint.
	IdToken *string `json:"id_token,omitempty"`

	// TokenType is "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	ExpiresIn int `json:"expires_in,omitempty"`

	// RefreshToken is used with grant_type=refresh_token. A refresh response may omit it,
	// in which case the previous refresh token stays valid.
	RefreshToken *string `json:"refresh_token,omitempty"`

	// Scope is the space separated list of granted scopes.
	Scope string `json:"scope,omitempty"`
}

// ErrorResponse is the body of a rejected token request (RFC 6749 §5.2).
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}
