package config

import (
	"strconv"
	"time"
)

const (
	tokenHTTPTimeoutVar = "TOKEN_HTTP_TIMEOUT"
	coalesceRefreshVar  = "COALESCE_REFRESH"
)

type OAuthConfig interface {
	GetScopes() []string
	GetExpirySkew() time.Duration
	GetTokenHTTPTimeout() time.Duration
	GetCoalesceRefresh() bool
	GetDefaultPostLoginPath() string
}

var _ OAuthConfig = mainConfig{}

func (mainConfig) GetScopes() []string {
	return []string{"openid", "profile", "email"}
}

func (mainConfig) GetExpirySkew() time.Duration {
	return 20 * time.Second
}

// GetTokenHTTPTimeout accepts a Go duration ("45s") or plain seconds ("45").
func (c mainConfig) GetTokenHTTPTimeout() time.Duration {
	raw := c.get(tokenHTTPTimeoutVar, "30s")
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 30 * time.Second
}

func (c mainConfig) GetCoalesceRefresh() bool {
	return parseBool(c.get(coalesceRefreshVar, "false"))
}

func (mainConfig) GetDefaultPostLoginPath() string {
	return "/restricted"
}
