package config

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	kcBaseURLVar   = "KC_BASE_URL"
	kcRealmVar     = "KC_REALM"
	kcClientIDVar  = "KC_CLIENT_ID"
	kcDiscoveryVar = "KC_DISCOVERY"
)

type KeycloakConfig interface {
	GetKeycloakBaseURL() string
	GetKeycloakRealm() string
	GetKeycloakClientID() string
	GetKeycloakDiscovery() bool
	GetRealmURL() string
}

var _ KeycloakConfig = mainConfig{}

func (c mainConfig) GetKeycloakBaseURL() string {
	return strings.TrimSuffix(c.get(kcBaseURLVar, ""), "/")
}

func (c mainConfig) GetKeycloakRealm() string {
	return c.get(kcRealmVar, "")
}

func (c mainConfig) GetKeycloakClientID() string {
	return c.get(kcClientIDVar, "")
}

// GetKeycloakDiscovery enables endpoint discovery through the realm's
// .well-known/openid-configuration document.
func (c mainConfig) GetKeycloakDiscovery() bool {
	return parseBool(c.get(kcDiscoveryVar, "false"))
}

// GetRealmURL returns {base}/realms/{realm}, which is also the OIDC issuer.
func (c mainConfig) GetRealmURL() string {
	return c.GetKeycloakBaseURL() + "/realms/" + url.PathEscape(c.GetKeycloakRealm())
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
