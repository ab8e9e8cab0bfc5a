package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the Skydeck API.
type Config struct {
	Environment      string
	HTTPPort         int
	AuthSharedSecret string
	LoginOriginURL   string
	DataStore        string
	DatabaseURL      string
	RedisAddr        string
	SessionTTL       time.Duration
	LogLevel         string
	AllowedOrigins   []string
	StaticDir        string
}

// Load reads configuration from environment variables with sensible defaults
// for local development. The shared signing secret and the external login
// origin are required: without them the process must not serve protected
// routes, so their absence is an error here rather than a per-request failure.
func Load() (Config, error) {
	secret, err := getEnvOrFile("AUTH_SHARED_SECRET", "/run/secrets/skydeck_auth_secret")
	if err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(secret) == "" {
		return Config{}, errors.New("AUTH_SHARED_SECRET is required")
	}

	loginOrigin := strings.TrimSpace(getEnv("LOGIN_ORIGIN_URL", ""))
	if loginOrigin == "" {
		return Config{}, errors.New("LOGIN_ORIGIN_URL is required")
	}
	if parsed, err := url.Parse(loginOrigin); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Config{}, fmt.Errorf("LOGIN_ORIGIN_URL %q must be an absolute URL", loginOrigin)
	}

	databaseURL, err := getEnvOrFile("DATABASE_URL", "/run/secrets/skydeck_database_url")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment:      getEnv("APP_ENV", "development"),
		AuthSharedSecret: strings.TrimSpace(secret),
		LoginOriginURL:   strings.TrimSuffix(loginOrigin, "/"),
		DataStore:        strings.ToLower(getEnv("DATA_STORE", "memory")),
		DatabaseURL:      databaseURL,
		RedisAddr:        strings.TrimSpace(getEnv("REDIS_ADDR", "")),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		AllowedOrigins:   parseCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8080")),
		StaticDir:        getEnv("WEB_DIST_PATH", "web/dist"),
	}

	portValue := getEnv("PORT", getEnv("HTTP_PORT", "8080"))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return Config{}, fmt.Errorf("invalid port %q: %w", portValue, err)
	}
	cfg.HTTPPort = port

	ttlValue := getEnv("SESSION_TTL", "168h")
	ttl, err := time.ParseDuration(ttlValue)
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("invalid SESSION_TTL %q", ttlValue)
	}
	cfg.SessionTTL = ttl

	if cfg.DataStore == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATA_STORE is postgres but DATABASE_URL is not set")
	}

	return cfg, nil
}

// HTTPAddress returns the address the HTTP server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// UseInMemoryStore returns true if the in-memory user directory should be used.
func (c Config) UseInMemoryStore() bool {
	return c.DataStore == "memory"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrFile(key, defaultPath string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	fileKey := key + "_FILE"
	if path := os.Getenv(fileKey); path != "" {
		return readSecret(path, fileKey)
	}

	if defaultPath != "" {
		return readSecret(defaultPath, key)
	}

	return "", nil
}

func readSecret(path, name string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: reading %s (%s): %w", name, path, err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" {
		return "", fmt.Errorf("config: %s (%s) is empty", name, path)
	}
	return value, nil
}
