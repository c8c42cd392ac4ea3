package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds server-level configuration loaded from the environment.
type Config struct {
	HTTPPort   string
	RedisAddr  string
	SessionTTL time.Duration
	AI         *AIConfig
}

// Load reads configuration from environment variables.
// REDIS_URI is optional; when empty, sessions are kept in process memory.
func Load() *Config {
	return &Config{
		HTTPPort:   getEnv("PORT", "8080"),
		RedisAddr:  redisAddr(),
		SessionTTL: time.Duration(getEnvInt("SESSION_TTL_MIN", 30)) * time.Minute,
		AI:         DefaultAIConfig(),
	}
}

func redisAddr() string {
	addr := os.Getenv("REDIS_URI")
	// Remove redis:// prefix if present
	addr = strings.TrimPrefix(addr, "redis://")
	return addr
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
