package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendLocal    = "local"
	BackendPostgres = "postgres"

	// DefaultAdminPassword is the shared delete password used when none is configured.
	DefaultAdminPassword = "123456"
)

type Config struct {
	AppHost   string
	LogLevel  string
	Backend   string
	LocalPath string

	DatabaseURL   string
	MigrationsDir string
	PollInterval  time.Duration

	AdminPassword     string
	AdminPasswordHash string
	JWTSecret         string
	ConfirmTokenTTL   time.Duration
	ConfirmAttempts   int
	ConfirmWindow     time.Duration

	SupabaseURL     string
	SupabaseKey     string
	DocumentsBucket string
}

// Load reads the configuration from the environment. godotenv has already merged .env by
// the time this runs.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_HOST", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_BACKEND", "")
	v.SetDefault("LOCAL_STORE_PATH", "data/splitters.json")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("POLL_INTERVAL", "3s")
	v.SetDefault("ADMIN_PASSWORD", DefaultAdminPassword)
	v.SetDefault("CONFIRM_TOKEN_TTL", "5m")
	v.SetDefault("CONFIRM_ATTEMPTS", 5)
	v.SetDefault("CONFIRM_WINDOW", "1m")
	v.SetDefault("DOCUMENTS_BUCKET", "location-documents")

	for _, key := range []string{"DATABASE_URL", "ADMIN_PASSWORD_HASH", "JWT_SECRET", "SUPABASE_URL", "SUPABASE_KEY"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{
		AppHost:           v.GetString("APP_HOST"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		Backend:           strings.ToLower(v.GetString("STORE_BACKEND")),
		LocalPath:         v.GetString("LOCAL_STORE_PATH"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		MigrationsDir:     v.GetString("MIGRATIONS_DIR"),
		PollInterval:      v.GetDuration("POLL_INTERVAL"),
		AdminPassword:     v.GetString("ADMIN_PASSWORD"),
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		ConfirmTokenTTL:   v.GetDuration("CONFIRM_TOKEN_TTL"),
		ConfirmAttempts:   v.GetInt("CONFIRM_ATTEMPTS"),
		ConfirmWindow:     v.GetDuration("CONFIRM_WINDOW"),
		SupabaseURL:       v.GetString("SUPABASE_URL"),
		SupabaseKey:       v.GetString("SUPABASE_KEY"),
		DocumentsBucket:   v.GetString("DOCUMENTS_BUCKET"),
	}

	if cfg.Backend == "" {
		cfg.Backend = BackendLocal
		if cfg.DatabaseURL != "" {
			cfg.Backend = BackendPostgres
		}
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
		if c.LocalPath == "" {
			return fmt.Errorf("LOCAL_STORE_PATH is required for the local backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Backend)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.ConfirmAttempts <= 0 || c.ConfirmWindow <= 0 || c.ConfirmTokenTTL <= 0 {
		return fmt.Errorf("confirmation limits must be positive")
	}

	return nil
}

// DocumentsEnabled reports whether the storage bucket is configured.
func (c *Config) DocumentsEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}
