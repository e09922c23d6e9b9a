package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	devSecretKey        = "default_super_secret_key"
	devRefreshSecretKey = "default_super_refresh_secret_key"
)

// Config holds everything read from the environment at process start. It is read-only afterwards.
type Config struct {
	ProjectName string
	Port        string
	GinMode     string
	LogLevel    string

	DatabaseURL string

	SecretKey        []byte
	RefreshSecretKey []byte
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	CORSAllowOrigins []string
	SeedOnStart      bool
}

// Load reads configs/.env and .env when present, then the process environment.
func Load() (*Config, error) {
	for _, file := range []string{"configs/.env", ".env"} {
		if err := godotenv.Load(file); err == nil {
			log.Printf("Loaded environment from %s", file)
		}
	}

	cfg := &Config{
		ProjectName:      EnvDefault("PROJECT_NAME", "Access API"),
		Port:             EnvDefault("PORT", "8080"),
		GinMode:          os.Getenv("GIN_MODE"),
		LogLevel:         EnvDefault("LOG_LEVEL", "info"),
		DatabaseURL:      EnvDefault("DATABASE_URL", "sqlite://app.db"),
		AccessTokenTTL:   time.Duration(EnvIntDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		RefreshTokenTTL:  time.Duration(EnvIntDefault("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
		CORSAllowOrigins: CSV(EnvDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		SeedOnStart:      EnvBoolDefault("SEED_ON_START", false),
	}

	secret, err := secretFromEnv("SECRET_KEY", devSecretKey, cfg.GinMode)
	if err != nil {
		return nil, err
	}
	refreshSecret, err := secretFromEnv("REFRESH_SECRET_KEY", devRefreshSecretKey, cfg.GinMode)
	if err != nil {
		return nil, err
	}
	cfg.SecretKey = secret
	cfg.RefreshSecretKey = refreshSecret

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the token service relies on.
func (c *Config) Validate() error {
	if len(c.SecretKey) == 0 || len(c.RefreshSecretKey) == 0 {
		return errors.New("config: signing secrets must not be empty")
	}
	if string(c.SecretKey) == string(c.RefreshSecretKey) {
		return errors.New("config: SECRET_KEY and REFRESH_SECRET_KEY must differ")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("config: token lifetimes must be positive")
	}
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL is empty")
	}
	return nil
}

func secretFromEnv(key, devFallback, ginMode string) ([]byte, error) {
	v := os.Getenv(key)
	if v != "" {
		return []byte(v), nil
	}
	if ginMode == "release" {
		return nil, fmt.Errorf("config: %s environment variable is required in release mode", key)
	}
	// Development fallback only
	return []byte(devFallback), nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
