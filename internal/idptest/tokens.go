package idptest

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var signingKey = []byte("idptest-signing-key")

// AccessToken returns an HS256 signed JWT expiring at exp with the given extra claims.
func AccessToken(exp time.Time, extra map[string]any) string {
	claims := jwtlib.MapClaims{
		"exp":                exp.Unix(),
		"iat":                exp.Add(-time.Hour).Unix(),
		"iss":                "http://idp.test/realms/timeseries",
		"sub":                "user-1",
		"preferred_username": "jdoe",
	}
	for k, v := range extra {
		claims[k] = v
	}
	return Sign(claims)
}

// Sign signs arbitrary claims. A nil "exp" entry removes the claim.
func Sign(claims jwtlib.MapClaims) string {
	for k, v := range claims {
		if v == nil {
			delete(claims, k)
		}
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic("idptest: sign token: " + err.Error())
	}
	return signed
}
