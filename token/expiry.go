package token

import "time"

// IsExpired fails closed: a token whose claims or exp cannot be read is expired.
// Otherwise the token is expired iff now >= exp - skew, in milliseconds.
func IsExpired(accessToken string, skew time.Duration, now time.Time) bool {
	claims, ok := DecodeClaims(accessToken)
	if !ok {
		return true
	}
	exp, ok := claims.ExpiresAt()
	if !ok {
		return true
	}
	return now.UnixMilli() >= exp.UnixMilli()-skew.Milliseconds()
}
