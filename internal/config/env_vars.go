package config

import "strings"

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	folderEnvVar   = "FOLDER"
	envVar         = "ENV"
	logLevelVar    = "LOG_LEVEL"
	publicURLVar   = "PUBLIC_URL"
	appBasenameVar = "APP_BASENAME"
	apiBaseURLVar  = "API_BASE_URL"
	tokenStoreVar  = "TOKEN_STORE"
)

const (
	TokenStoreFile   = "file"
	TokenStoreSQLite = "sqlite"
)

var _ EnvConfig = mainConfig{}

func (c mainConfig) GetPort() string {
	port := c.get(portEnvVar, "9005")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (c mainConfig) GetAppName() string {
	return c.get(appNameVar, "TS Dashboard")
}

func (c mainConfig) GetDataFolder() string {
	return c.get(folderEnvVar, "./data")
}

func (c mainConfig) GetEnv() string {
	return strings.ToUpper(c.get(envVar, "DEV"))
}

func (c mainConfig) GetLogLevel() string {
	return c.get(logLevelVar, "info")
}

// GetPublicURL returns the origin the browser uses to reach the dashboard,
// e.g. "http://localhost:9005". Redirect URIs are built from it.
func (c mainConfig) GetPublicURL() string {
	return strings.TrimSuffix(c.get(publicURLVar, "http://localhost"+c.GetPort()), "/")
}

// GetAppBasename returns the mount path of the dashboard, normalised to
// "/name" without trailing slash, or "" when mounted at the root.
func (c mainConfig) GetAppBasename() string {
	return NormalizeBasename(c.get(appBasenameVar, ""))
}

func (c mainConfig) GetAPIBaseURL() string {
	return strings.TrimSuffix(c.get(apiBaseURLVar, "http://localhost:9006/timeseries"), "/")
}

func (c mainConfig) GetTokenStore() string {
	return strings.ToLower(c.get(tokenStoreVar, TokenStoreFile))
}

// NormalizeBasename turns "", "/", "app/", "/app//" into "", "", "/app", "/app".
func NormalizeBasename(input string) string {
	s := strings.TrimSpace(input)
	if s == "" || s == "/" {
		return ""
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	s = strings.TrimRight(s, "/")
	if s == "/" {
		return ""
	}
	return s
}
