package token

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/tsdash/internal/utils"
)

// DefaultSkew is subtracted from a token's exp when judging expiry.
const DefaultSkew = 20 * time.Second

// Claims is a read-only view over the decoded payload of a JWT. It is never
// persisted and is recomputed from the access token when needed.
type Claims struct {
	jwtlib.MapClaims
}

var segmentParser = jwtlib.NewParser(jwtlib.WithPaddingAllowed())

// DecodeClaims decodes the payload segment of a JWT without verifying it.
// ok is false when the token is not three dot-separated segments or the
// payload is not base64url encoded JSON.
func DecodeClaims(accessToken string) (claims Claims, ok bool) {
	parts := strings.Split(accessToken, ".")
	if len(parts) != 3 {
		return Claims{}, false
	}
	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return Claims{}, false
	}
	var m jwtlib.MapClaims
	if err := json.Unmarshal(payload, &m); err != nil || m == nil {
		return Claims{}, false
	}
	return Claims{MapClaims: m}, true
}

// ExpiresAt returns the exp claim; ok is false when it is absent or malformed.
func (c Claims) ExpiresAt() (time.Time, bool) {
	exp, err := c.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (c Claims) Subject() string {
	sub, _ := c.GetSubject()
	return sub
}

func (c Claims) Issuer() string {
	iss, _ := c.GetIssuer()
	return iss
}

func (c Claims) Audience() []string {
	aud, _ := c.GetAudience()
	return aud
}

func (c Claims) PreferredUsername() string {
	name, _ := c.MapClaims["preferred_username"].(string)
	return name
}

// RealmRoles returns realm_access.roles.
func (c Claims) RealmRoles() []string {
	return rolesOf(c.MapClaims["realm_access"])
}

// ClientRoles returns resource_access.<clientID>.roles.
func (c Claims) ClientRoles(clientID string) []string {
	resources, ok := c.MapClaims["resource_access"].(map[string]any)
	if !ok {
		return nil
	}
	return rolesOf(resources[clientID])
}

// Roles merges realm roles with the client's roles, without duplicates. An
// empty clientID returns the realm roles only.
func (c Claims) Roles(clientID string) []string {
	roles := c.RealmRoles()
	if clientID != "" {
		roles = append(roles, c.ClientRoles(clientID)...)
	}
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if r != "" && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

func (c Claims) HasRole(role, clientID string) bool {
	return slices.Contains(c.Roles(clientID), role)
}

func (c Claims) HasAnyRole(roles []string, clientID string) bool {
	have := c.Roles(clientID)
	for _, r := range roles {
		if slices.Contains(have, r) {
			return true
		}
	}
	return false
}

func rolesOf(v any) []string {
	access, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	roles, ok := access["roles"].([]any)
	if !ok {
		return nil
	}
	return utils.ToStringSlice(roles)
}
