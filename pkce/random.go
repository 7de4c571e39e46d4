package pkce

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	stateBytes    = 16
	verifierBytes = 32
)

// randomHex returns n random bytes hex encoded.
func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
