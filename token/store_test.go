package token_test

import (
	"errors"
	"testing"

	"github.com/jrsteele09/tsdash/token"
	tokenfakerepo "github.com/jrsteele09/tsdash/token/repofake"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	kv := tokenfakerepo.NewFakeKV()
	store := token.NewStore(kv)

	bundles := []token.Bundle{
		{AccessToken: "a", RefreshToken: "r", IDToken: "i", ExpiresAtEpochMs: 1_003_600_000},
		{AccessToken: "a-only", ExpiresAtEpochMs: 42},
	}
	for _, b := range bundles {
		require.NoError(t, store.Save(b))
		loaded, ok := store.Load()
		require.True(t, ok)
		require.Equal(t, b, loaded)
	}
}

func TestStore_UsesVersionedKey(t *testing.T) {
	kv := tokenfakerepo.NewFakeKV()
	store := token.NewStore(kv)
	require.NoError(t, store.Save(token.Bundle{AccessToken: "a", ExpiresAtEpochMs: 1}))

	raw, found, err := kv.Get(token.StorageKey)
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `{"accessToken":"a","expiresAtEpochMs":1}`, string(raw))
}

func TestStore_CorruptDataIsAbsent(t *testing.T) {
	cases := map[string]string{
		"not json":          "{{{",
		"json array":        `["a"]`,
		"json null":         "null",
		"empty object":      "{}",
		"missing access":    `{"expiresAtEpochMs":1000}`,
		"missing expiry":    `{"accessToken":"a"}`,
		"wrong types":       `{"accessToken":1,"expiresAtEpochMs":"soon"}`,
		"empty string":      "",
		"zero expiry":       `{"accessToken":"a","expiresAtEpochMs":0}`,
		"empty access":      `{"accessToken":"","expiresAtEpochMs":5}`,
		"truncated payload": `{"accessToken":"a","expiresAt`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			kv := tokenfakerepo.NewFakeKV()
			kv.Raw(token.StorageKey, []byte(raw))
			store := token.NewStore(kv)

			require.NotPanics(t, func() {
				_, ok := store.Load()
				require.False(t, ok)
			})
		})
	}
}

func TestStore_BackendErrorIsAbsent(t *testing.T) {
	kv := tokenfakerepo.NewFakeKV()
	store := token.NewStore(kv)
	require.NoError(t, store.Save(token.Bundle{AccessToken: "a", ExpiresAtEpochMs: 1}))

	kv.Err = errors.New("disk on fire")
	_, ok := store.Load()
	require.False(t, ok)
	require.Error(t, store.Save(token.Bundle{AccessToken: "b", ExpiresAtEpochMs: 1}))
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	kv := tokenfakerepo.NewFakeKV()
	store := token.NewStore(kv)
	require.NoError(t, store.Save(token.Bundle{AccessToken: "a", ExpiresAtEpochMs: 1}))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, ok := store.Load()
	require.False(t, ok)
	require.Equal(t, 0, kv.Len())
}

func TestStore_WithKey(t *testing.T) {
	kv := tokenfakerepo.NewFakeKV()
	v1 := token.NewStore(kv)
	v2 := token.NewStore(kv, token.WithKey("auth_tokens_v2"))

	require.NoError(t, v1.Save(token.Bundle{AccessToken: "a", ExpiresAtEpochMs: 1}))
	_, ok := v2.Load()
	require.False(t, ok)
}
