package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the persisted tokens",
	Long:  "Clears the persisted token bundle. The identity provider session is left alone; sign out from the dashboard to end it too.",
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

		if err := store.Clear(); err != nil {
			return fmt.Errorf("clear tokens: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}
