package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	MongoURI    string
	PostgresURI string
	RedisURI    string
	Port        string
	Environment string // ENV: production, development, etc.

	// WidgetStore selects the KV backend for widget records: "redis" (flat
	// key-value) or "mongo" (shared container). Anything else falls back to
	// the in-memory store, which does not survive restarts.
	WidgetStore string

	// SharedContainer is the named container (Mongo collection) shared with
	// the widget extension when WidgetStore is "mongo".
	SharedContainer string

	// HostToken, when set, is required as ?token= on the widget-host
	// WebSocket endpoint.
	HostToken string

	// SweepIntervalMinutes is how often the index reconciliation sweep runs.
	SweepIntervalMinutes int

	AllowedOrigins []string // CORS allow-list from ALLOWED_ORIGINS or FRONTEND_URL(s)
	AllowedHost    string   // Hostname for strict host check (production only)
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = stripToHostname(getEnv("HOST", ""))
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	return &Config{
		MongoURI:             getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/tapfolio")),
		PostgresURI:          getEnv("POSTGRES_URI", "postgres://localhost:5432/tapfolio?sslmode=disable"),
		RedisURI:             getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Port:                 getEnv("PORT", "8080"),
		Environment:          env,
		WidgetStore:          strings.ToLower(getEnv("WIDGET_STORE", "redis")),
		SharedContainer:      getEnv("SHARED_CONTAINER", "group.com.tapfolio.widgets"),
		HostToken:            getEnv("WIDGET_HOST_TOKEN", ""),
		SweepIntervalMinutes: getEnvInt("WIDGET_SWEEP_INTERVAL_MINUTES", 60),
		AllowedOrigins:       allowedOrigins,
		AllowedHost:          allowedHost,
	}
}

func stripToHostname(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
