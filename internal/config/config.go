package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Redis  RedisConfig
	Engine EngineConfig
}

// RedisConfig holds Redis-specific configuration. An empty Addr means
// the tool runs with in-memory storage only.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// EngineConfig holds combat engine toggles
type EngineConfig struct {
	// AutoApplyDamage controls whether resolved damage is subtracted
	// from HP immediately or only logged for the operator to apply.
	AutoApplyDamage bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Engine: EngineConfig{
			AutoApplyDamage: getEnvAsBoolOrDefault("AUTO_APPLY_DAMAGE", true),
		},
	}

	return cfg, nil
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
