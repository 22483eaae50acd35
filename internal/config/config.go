package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	SessionConfig
	OIDCConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
	GetLogLevel() string
	GetLogFormat() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Session
	OIDC
}

// New loads .env files (if present) and returns the environment backed config.
func New() Config {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
	return mainConfig{}
}

// Validate reports settings the server cannot start without.
func Validate(c Config) error {
	if c.GetSessionSecret() == "" {
		return fmt.Errorf("[config Validate] SESSION_SECRET must be set when ENV is %s", c.GetEnv())
	}
	return nil
}
