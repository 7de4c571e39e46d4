package pkce

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Endpoints are the identity provider URLs used by the engine.
type Endpoints struct {
	AuthURL   string
	TokenURL  string
	LogoutURL string
}

// RealmEndpoints derives the Keycloak endpoints from a realm URL such as
// http://kc:8080/realms/timeseries.
func RealmEndpoints(realmURL string) Endpoints {
	base := strings.TrimRight(realmURL, "/") + "/protocol/openid-connect"
	return Endpoints{
		AuthURL:   base + "/auth",
		TokenURL:  base + "/token",
		LogoutURL: base + "/logout",
	}
}

func (e Endpoints) oauth2Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   e.AuthURL,
		TokenURL:  e.TokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// discover reads the provider's OpenID configuration. The logout endpoint
// falls back to the Keycloak default when end_session_endpoint is not
// advertised.
func discover(ctx context.Context, realmURL string) (*oidc.Provider, Endpoints, error) {
	provider, err := oidc.NewProvider(ctx, realmURL)
	if err != nil {
		return nil, Endpoints{}, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	var extra struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	if err := provider.Claims(&extra); err != nil {
		return nil, Endpoints{}, fmt.Errorf("failed to read provider metadata: %w", err)
	}

	ep := provider.Endpoint()
	endpoints := Endpoints{
		AuthURL:   ep.AuthURL,
		TokenURL:  ep.TokenURL,
		LogoutURL: extra.EndSessionEndpoint,
	}
	if endpoints.LogoutURL == "" {
		endpoints.LogoutURL = RealmEndpoints(realmURL).LogoutURL
	}
	return provider, endpoints, nil
}
