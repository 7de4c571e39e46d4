package config

import "time"

const (
	authDisabledVar = "AUTH_DISABLED"
	rateLimitVar    = "RATE_LIMIT"
)

type SecurityConfig interface {
	GetAuthDisabled() bool
	GetMaxSessionAge() time.Duration
	GetEnableRateLimiting() bool
}

var _ SecurityConfig = mainConfig{}

// GetAuthDisabled turns every guarded route public. Local development only.
func (c mainConfig) GetAuthDisabled() bool {
	return parseBool(c.get(authDisabledVar, "false"))
}

// GetMaxSessionAge bounds how long an idle tab scope (pending login state) is kept.
func (mainConfig) GetMaxSessionAge() time.Duration {
	return 30 * time.Minute
}

func (c mainConfig) GetEnableRateLimiting() bool {
	return parseBool(c.get(rateLimitVar, "true"))
}
