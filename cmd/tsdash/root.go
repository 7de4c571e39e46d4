package main

import (
	"os"
	"strings"

	"github.com/jrsteele09/tsdash/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "tsdash",
	Short: "Time-series dashboard",
	Long: `tsdash serves the time-series dashboard and signs its user in against a
Keycloak realm using the OAuth2 Authorization Code flow with PKCE.`,
	SilenceUsage: true,
	// Running tsdash without a subcommand serves the dashboard.
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (keys are the environment variable names)")
	rootCmd.AddCommand(serveCmd, tokenCmd, logoutCmd)
}

// loadConfig reads the --config file and sets up logging from it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)
	return cfg, nil
}

// setupLogging writes human readable logs in DEV and JSON everywhere else.
func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.GetLogLevel()))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("app", cfg.GetAppName()).Logger()
}
