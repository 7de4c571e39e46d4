package token

import (
	"encoding/json"
	"time"
)

// Bundle is the token set obtained from the identity provider. AccessToken and
// ExpiresAtEpochMs are required; a bundle missing either is treated as absent.
type Bundle struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken,omitempty"`
	IDToken          string `json:"idToken,omitempty"`
	ExpiresAtEpochMs int64  `json:"expiresAtEpochMs"`
}

// Valid reports whether the required fields are present.
func (b Bundle) Valid() bool {
	return b.AccessToken != "" && b.ExpiresAtEpochMs != 0
}

// ExpiresAt returns ExpiresAtEpochMs as a time.
func (b Bundle) ExpiresAt() time.Time {
	return time.UnixMilli(b.ExpiresAtEpochMs)
}

// HasRefreshToken reports whether the bundle can be refreshed.
func (b Bundle) HasRefreshToken() bool {
	return b.RefreshToken != ""
}

func encodeBundle(b Bundle) ([]byte, error) {
	return json.Marshal(b)
}

// decodeBundle never fails outward: anything unreadable is an absent bundle.
func decodeBundle(raw []byte) (Bundle, bool) {
	if len(raw) == 0 {
		return Bundle{}, false
	}
	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return Bundle{}, false
	}
	if !b.Valid() {
		return Bundle{}, false
	}
	return b, true
}
