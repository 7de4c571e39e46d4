package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jrsteele09/tsdash/internal/config"
	"github.com/jrsteele09/tsdash/token"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Show the status of the persisted tokens",
	Long:  "Prints whether a token bundle is persisted, when it expires and who it belongs to. Token values are never printed.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, closeStore, err := openTokenStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		printTokenStatus(cmd.OutOrStdout(), cfg, store, time.Now())
		return nil
	},
}

func printTokenStatus(w io.Writer, cfg config.Config, store *token.Store, now time.Time) {
	b, ok := store.Load()
	if !ok {
		fmt.Fprintln(w, "Not signed in.")
		return
	}

	state := "valid"
	if token.IsExpired(b.AccessToken, cfg.GetExpirySkew(), now) {
		state = "expired"
	}
	fmt.Fprintf(w, "Access token:  %s (expires %s)\n", state, b.ExpiresAt().Local().Format(time.RFC1123))
	fmt.Fprintf(w, "Refresh token: %t\n", b.HasRefreshToken())
	fmt.Fprintf(w, "ID token:      %t\n", b.IDToken != "")

	claims, ok := token.DecodeClaims(b.AccessToken)
	if !ok {
		return
	}
	fmt.Fprintf(w, "User:          %s (%s)\n", claims.PreferredUsername(), claims.Subject())
	fmt.Fprintf(w, "Issuer:        %s\n", claims.Issuer())
	if roles := claims.Roles(cfg.GetKeycloakClientID()); len(roles) > 0 {
		fmt.Fprintf(w, "Roles:         %s\n", strings.Join(roles, ", "))
	}
}
