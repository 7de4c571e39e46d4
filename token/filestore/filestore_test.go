package filestore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/tsdash/token"
	"github.com/jrsteele09/tsdash/token/filestore"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tokens")
	store, err := filestore.New(dir)
	require.NoError(t, err)

	_, found, err := store.Get(token.StorageKey)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Put(token.StorageKey, []byte(`{"a":1}`)))
	require.NoError(t, store.Put(token.StorageKey, []byte(`{"a":2}`)))

	value, found, err := store.Get(token.StorageKey)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `{"a":2}`, string(value))

	info, err := os.Stat(filepath.Join(dir, token.StorageKey+".json"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")

	require.NoError(t, store.Delete(token.StorageKey))
	require.NoError(t, store.Delete(token.StorageKey))
	_, found, err = store.Get(token.StorageKey)
	require.NoError(t, err)
	require.False(t, found)
}

func TestStore_RejectsPathKeys(t *testing.T) {
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "..", "../escape", `a\b`} {
		require.Error(t, store.Put(key, []byte("x")), "key %q", key)
	}
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := filestore.New(" ")
	require.Error(t, err)
}

func TestStore_BacksTokenStore(t *testing.T) {
	kv, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	store := token.NewStore(kv)

	b := token.Bundle{AccessToken: "a", RefreshToken: "r", ExpiresAtEpochMs: 99}
	require.NoError(t, store.Save(b))
	loaded, ok := token.NewStore(kv).Load()
	require.True(t, ok)
	require.Equal(t, b, loaded)
}
