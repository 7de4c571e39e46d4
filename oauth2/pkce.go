package oauth2

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// RFC 7636 §4.1 bounds for code_verifier, which S256 challenges mirror.
const (
	minVerifierLength = 43
	maxVerifierLength = 128
)

// ValidateCodeChallenge checks the PKCE parameters of an authorization request.
// Only S256 is accepted.
func ValidateCodeChallenge(challenge string, method CodeMethodType) error {
	if challenge == "" || method == "" {
		return fmt.Errorf("%w: code_challenge and code_challenge_method are required", ErrInvalidCodeChallenge)
	}
	if method != CodeMethodTypeS256 {
		return fmt.Errorf("%w: %q", ErrInvalidCodeChallengeMethod, method)
	}
	if len(challenge) < minVerifierLength || len(challenge) > maxVerifierLength {
		return fmt.Errorf("%w: length must be between 43 and 128 characters", ErrInvalidCodeChallenge)
	}
	return nil
}

// ValidateCodeVerifier checks a verifier's length.
func ValidateCodeVerifier(verifier string) error {
	if len(verifier) < minVerifierLength || len(verifier) > maxVerifierLength {
		return fmt.Errorf("%w: length must be between 43 and 128 characters", ErrInvalidCodeVerifier)
	}
	return nil
}

// CheckCodeChallenge reports whether verifier matches the stored challenge.
func CheckCodeChallenge(challenge, verifier string, method CodeMethodType) bool {
	if method != CodeMethodTypeS256 {
		return false
	}
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:]) == challenge
}
