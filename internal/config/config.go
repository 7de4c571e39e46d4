package config

import (
	"fmt"
	"os"
	"strings"

	autherrors "github.com/jrsteele09/tsdash/internal/errors"
	"gopkg.in/yaml.v3"
)

type Config interface {
	EnvConfig
	KeycloakConfig
	OAuthConfig
	SecurityConfig
	Public() PublicConfig
	Validate() error
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
	GetLogLevel() string
	GetPublicURL() string
	GetAppBasename() string
	GetAPIBaseURL() string
	GetTokenStore() string
}

// mainConfig resolves every setting as environment variable, then config file
// value, then default.
type mainConfig struct {
	file map[string]string
}

func New() Config {
	return mainConfig{file: map[string]string{}}
}

// Load reads a YAML file whose keys are the environment variable names, e.g.
//
//	KC_BASE_URL: http://localhost:8080
//	KC_REALM: timeseries
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return New(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[config Load] read %q: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML config content.
func Parse(raw []byte) (Config, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("[config Parse] yaml: %w", err)
	}
	values := make(map[string]string, len(doc))
	for k, v := range doc {
		if v == nil {
			continue
		}
		values[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return mainConfig{file: values}, nil
}

func (c mainConfig) get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value, ok := c.file[key]; ok && value != "" {
		return value
	}
	return defaultValue
}

func (c mainConfig) Validate() error {
	if c.GetAuthDisabled() {
		return nil
	}
	var missing []string
	if c.GetKeycloakBaseURL() == "" {
		missing = append(missing, kcBaseURLVar)
	}
	if c.GetKeycloakRealm() == "" {
		missing = append(missing, kcRealmVar)
	}
	if c.GetKeycloakClientID() == "" {
		missing = append(missing, kcClientIDVar)
	}
	if len(missing) > 0 {
		return autherrors.Wrapf(autherrors.ErrMissingConfig, "%s required", strings.Join(missing, ", "))
	}
	switch c.GetTokenStore() {
	case TokenStoreFile, TokenStoreSQLite:
	default:
		return fmt.Errorf("%s: unknown token store %q", tokenStoreVar, c.GetTokenStore())
	}
	return nil
}
