package config

import "time"

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type SessionConfig interface {
	GetSessionSecret() string
	GetSessionTTL() time.Duration
	GetSessionStore() string
	GetRedisAddress() string
	GetRedisPassword() string
	GetRedisDB() int
	GetSweepSchedule() string
}

type Session struct{}

var _ SessionConfig = Session{}

const devSessionSecret = "dev-only-session-secret"

// GetSessionSecret is the HMAC key for session tokens. Only DEV has a
// fallback; elsewhere it is empty until SESSION_SECRET is set.
func (Session) GetSessionSecret() string {
	if (EnvVars{}).GetEnv() == "DEV" {
		return GetEnv("SESSION_SECRET", devSessionSecret)
	}
	return GetEnv("SESSION_SECRET", "")
}

func (Session) GetSessionTTL() time.Duration {
	return GetEnvDuration("SESSION_TTL", 12*time.Hour)
}

func (Session) GetSessionStore() string {
	return GetEnv("SESSION_STORE", StoreMemory)
}

func (Session) GetRedisAddress() string {
	return GetEnv("REDIS_ADDRESS", "localhost:6379")
}

func (Session) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Session) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (Session) GetSweepSchedule() string {
	return GetEnv("SWEEP_SCHEDULE", "@every 5m")
}
