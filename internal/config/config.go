package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPAddr string

	// Origins allowed to open a WebSocket or call the REST endpoints.
	AllowOrigins []string

	// Secret shared with the REST API's session cookie; the upgrade
	// handler skips the session check when empty.
	JWTSecret string

	// Cross-instance presence bus; disabled when RedisAddr is empty.
	RedisAddr string
	RedisDB   int

	// Upgrade-endpoint rate limit (per client IP).
	WSRateMax int
	WSRatePer time.Duration
}

func Load() Config {
	cfg := Config{
		Env:       getEnv("APP_ENV", "dev"),
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
	}
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.WSRateMax = getEnvInt("WS_RATE_MAX", 30)
	cfg.WSRatePer = time.Duration(getEnvInt("WS_RATE_WINDOW_SEC", 60)) * time.Second
	cfg.AllowOrigins = splitCSV(getEnv("CORS_ALLOW", "http://localhost:5173"))
	return cfg
}

// getEnv returns the env var or a default
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getEnvInt parses a non-negative int env var with a fallback; an explicit
// zero is a legitimate value, only parse failures fall back.
func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	return def
}

// splitCSV trims and filters a comma-separated list
func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
