package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrsteele09/tsdash/internal/config"
	"github.com/jrsteele09/tsdash/token"
	"github.com/jrsteele09/tsdash/token/filestore"
	"github.com/jrsteele09/tsdash/token/sqlitestore"
	"github.com/rs/zerolog/log"
)

const sqliteFile = "tokens.db"

// openTokenStore opens the configured persistent backend. The returned close
// func must be called when the store is no longer used.
func openTokenStore(cfg config.Config) (*token.Store, func(), error) {
	folder := cfg.GetDataFolder()

	switch cfg.GetTokenStore() {
	case config.TokenStoreSQLite:
		if err := os.MkdirAll(folder, 0o700); err != nil {
			return nil, nil, fmt.Errorf("create data folder: %w", err)
		}
		db, err := sqlitestore.New(filepath.Join(folder, sqliteFile))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite token store: %w", err)
		}
		log.Info().Str("path", filepath.Join(folder, sqliteFile)).Msg("using sqlite token store")
		return token.NewStore(db), func() {
			if err := db.Close(); err != nil {
				log.Err(err).Msg("failed to close token store")
			}
		}, nil
	default:
		fs, err := filestore.New(folder)
		if err != nil {
			return nil, nil, fmt.Errorf("open file token store: %w", err)
		}
		log.Info().Str("folder", folder).Msg("using file token store")
		return token.NewStore(fs), func() {}, nil
	}
}
