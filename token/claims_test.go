package token_test

import (
	"encoding/base64"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/tsdash/internal/idptest"
	"github.com/jrsteele09/tsdash/token"
	"github.com/stretchr/testify/require"
)

func unsignedToken(payload string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"
}

func TestDecodeClaims(t *testing.T) {
	t.Run("signed keycloak token", func(t *testing.T) {
		exp := time.Unix(1_900_000_000, 0)
		raw := idptest.AccessToken(exp, map[string]any{
			"aud": []string{"api", "account"},
		})

		claims, ok := token.DecodeClaims(raw)
		require.True(t, ok)
		got, ok := claims.ExpiresAt()
		require.True(t, ok)
		require.Equal(t, exp.Unix(), got.Unix())
		require.Equal(t, "user-1", claims.Subject())
		require.Equal(t, "jdoe", claims.PreferredUsername())
		require.Equal(t, "http://idp.test/realms/timeseries", claims.Issuer())
		require.Equal(t, []string{"api", "account"}, claims.Audience())
	})

	t.Run("payload only needs to be base64url json", func(t *testing.T) {
		claims, ok := token.DecodeClaims(unsignedToken(`{"exp":10,"sub":"s"}`))
		require.True(t, ok)
		require.Equal(t, "s", claims.Subject())
	})

	t.Run("padded payload", func(t *testing.T) {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{}`))
		payload := base64.URLEncoding.EncodeToString([]byte(`{"sub":"p"}`))
		claims, ok := token.DecodeClaims(header + "." + payload + ".sig")
		require.True(t, ok)
		require.Equal(t, "p", claims.Subject())
	})

	invalid := map[string]string{
		"empty":           "",
		"two segments":    "a.b",
		"four segments":   "a.b.c.d",
		"not base64":      "a.@@@.c",
		"not json":        unsignedToken("hello"),
		"json not object": unsignedToken(`[1,2]`),
		"json null":       unsignedToken(`null`),
	}
	for name, raw := range invalid {
		t.Run(name, func(t *testing.T) {
			require.NotPanics(t, func() {
				_, ok := token.DecodeClaims(raw)
				require.False(t, ok)
			})
		})
	}
}

func TestClaims_Roles(t *testing.T) {
	raw := idptest.Sign(jwtlib.MapClaims{
		"exp": 10,
		"realm_access": map[string]any{
			"roles": []string{"offline_access", "viewer"},
		},
		"resource_access": map[string]any{
			"react-app": map[string]any{"roles": []string{"admin", "viewer"}},
			"account":   map[string]any{"roles": []string{"manage-account"}},
		},
	})
	claims, ok := token.DecodeClaims(raw)
	require.True(t, ok)

	require.Equal(t, []string{"offline_access", "viewer"}, claims.Roles(""))
	require.Equal(t, []string{"offline_access", "viewer", "admin"}, claims.Roles("react-app"))
	require.Equal(t, []string{"admin", "viewer"}, claims.ClientRoles("react-app"))
	require.Empty(t, claims.ClientRoles("unknown"))

	require.True(t, claims.HasRole("admin", "react-app"))
	require.False(t, claims.HasRole("admin", ""))
	require.True(t, claims.HasAnyRole([]string{"nope", "manage-account"}, "account"))
	require.False(t, claims.HasAnyRole([]string{"nope"}, "account"))
}

func TestClaims_NoRoles(t *testing.T) {
	claims, ok := token.DecodeClaims(unsignedToken(`{"realm_access":"weird"}`))
	require.True(t, ok)
	require.Empty(t, claims.Roles("react-app"))
}
