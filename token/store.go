package token

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// StorageKey is the versioned key holding the serialised Bundle. Bump the
// version when the format changes so old data is never misparsed.
const StorageKey = "auth_tokens_v1"

// Store persists a single Bundle under StorageKey.
type Store struct {
	kv  KV
	key string
}

type StoreOption func(*Store)

// WithKey overrides StorageKey.
func WithKey(key string) StoreOption {
	return func(s *Store) {
		s.key = key
	}
}

func NewStore(kv KV, opts ...StoreOption) *Store {
	s := &Store{kv: kv, key: StorageKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save overwrites the persisted bundle. The bundle shape is not validated.
func (s *Store) Save(b Bundle) error {
	raw, err := encodeBundle(b)
	if err != nil {
		return fmt.Errorf("[token Save] encode: %w", err)
	}
	if err := s.kv.Put(s.key, raw); err != nil {
		return fmt.Errorf("[token Save] put %s: %w", s.key, err)
	}
	return nil
}

// Load returns the persisted bundle. Missing, corrupt or incomplete data is
// reported as absent, never as an error.
func (s *Store) Load() (Bundle, bool) {
	raw, found, err := s.kv.Get(s.key)
	if err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("token store read failed, treating as no session")
		return Bundle{}, false
	}
	if !found {
		return Bundle{}, false
	}
	b, ok := decodeBundle(raw)
	if !ok {
		log.Debug().Str("key", s.key).Msg("ignoring unreadable token bundle")
	}
	return b, ok
}

// Clear removes the persisted bundle. Clearing an empty store is a no-op.
func (s *Store) Clear() error {
	if err := s.kv.Delete(s.key); err != nil {
		return fmt.Errorf("[token Clear] delete %s: %w", s.key, err)
	}
	return nil
}
