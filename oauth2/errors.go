package oauth2

import "errors"

// Error codes of RFC 6749 §4.1.2.1 and §5.2.
const (
	ErrorInvalidRequest          = "invalid_request"
	ErrorInvalidClient           = "invalid_client"
	ErrorInvalidGrant            = "invalid_grant"
	ErrorUnauthorizedClient      = "unauthorized_client"
	ErrorUnsupportedGrantType    = "unsupported_grant_type"
	ErrorUnsupportedResponseType = "unsupported_response_type"
	ErrorAccessDenied            = "access_denied"
)

var (
	ErrInvalidCodeChallenge       = errors.New("invalid code challenge")
	ErrInvalidCodeChallengeMethod = errors.New("invalid code challenge method")
	ErrInvalidCodeVerifier        = errors.New("invalid code verifier")
	ErrInvalidRedirectURI         = errors.New("invalid or no redirect uri")
	ErrInvalidResponseType        = errors.New("unsupported response type")
	ErrInvalidGrantType           = errors.New("unsupported grant type")
	ErrInvalidState               = errors.New("invalid state")
	ErrMissingParameter           = errors.New("missing parameter")
)
