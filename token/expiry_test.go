package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/tsdash/internal/idptest"
	"github.com/jrsteele09/tsdash/token"
	"github.com/stretchr/testify/require"
)

func TestIsExpired_SkewBoundary(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	skew := token.DefaultSkew

	for k := -60; k <= 60; k++ {
		raw := idptest.AccessToken(now.Add(time.Duration(k)*time.Second), nil)
		want := !(int64(k)*1000 > skew.Milliseconds())
		require.Equal(t, want, token.IsExpired(raw, skew, now), "k=%d", k)
	}
}

func TestIsExpired_Scenarios(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("expiring within skew is expired", func(t *testing.T) {
		raw := idptest.AccessToken(now.Add(5*time.Second), nil)
		require.True(t, token.IsExpired(raw, 20*time.Second, now))
	})

	t.Run("fresh token", func(t *testing.T) {
		raw := idptest.AccessToken(now.Add(time.Hour), nil)
		require.False(t, token.IsExpired(raw, 20*time.Second, now))
	})

	t.Run("zero skew", func(t *testing.T) {
		raw := idptest.AccessToken(now.Add(time.Second), nil)
		require.False(t, token.IsExpired(raw, 0, now))
		require.True(t, token.IsExpired(raw, 0, now.Add(time.Second)))
	})

	t.Run("missing exp fails closed", func(t *testing.T) {
		raw := idptest.Sign(jwtlib.MapClaims{"sub": "x"})
		require.True(t, token.IsExpired(raw, 0, now))
	})

	t.Run("garbage fails closed", func(t *testing.T) {
		require.True(t, token.IsExpired("not-a-jwt", 0, now))
	})
}
