package pkce

import (
	"context"
	"net/http"

	"github.com/jrsteele09/tsdash/internal/config"
	"github.com/jrsteele09/tsdash/token"
	"github.com/rs/zerolog/log"
)

// CallbackPath is the redirect path registered with the IdP, relative to the basename.
const CallbackPath = "/auth/callback"

// SettingsFromConfig derives the client registration from the dashboard config.
func SettingsFromConfig(cfg config.Config) Settings {
	appURL := cfg.GetPublicURL() + cfg.GetAppBasename()
	return Settings{
		ClientID:              cfg.GetKeycloakClientID(),
		RedirectURL:           appURL + CallbackPath,
		PostLogoutRedirectURL: appURL + "/",
		Scopes:                cfg.GetScopes(),
	}
}

// NewFromConfig builds the engine for the configured realm, using OIDC
// discovery when KC_DISCOVERY is set.
func NewFromConfig(ctx context.Context, cfg config.Config, store *token.Store, opts ...Option) (*Engine, error) {
	opts = append([]Option{WithHTTPClient(&http.Client{Timeout: cfg.GetTokenHTTPTimeout()})}, opts...)
	settings := SettingsFromConfig(cfg)

	if cfg.GetKeycloakDiscovery() {
		log.Info().Str("realm", cfg.GetRealmURL()).Msg("discovering identity provider endpoints")
		return Discover(ctx, cfg.GetRealmURL(), settings, store, opts...)
	}
	return New(RealmEndpoints(cfg.GetRealmURL()), settings, store, opts...), nil
}
