package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Renderer RendererConfig
	Scan     ScanConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// RedisConfig holds options for the notification dedup store.
type RedisConfig struct {
	Addr     string
	Password string
}

// RendererConfig points at the external PDF conversion service.
type RendererConfig struct {
	BaseURL string
}

// ScanConfig holds the cron schedule for the periodic trigger scans.
type ScanConfig struct {
	Cron string
}

// Load reads environment variables (optionally from a .env file) and
// materializes a Config instance. Database settings stay in pkg/database
// which reads DATABASE_URL/DB_* itself.
func Load() (*Config, error) {
	// Missing .env files are acceptable when configuration comes from the
	// environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("PORT", "3000"),
		},
		Redis: RedisConfig{
			Addr:     getenvWithDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Renderer: RendererConfig{
			BaseURL: getenvWithDefault("RENDERER_BASE_URL", "http://localhost:3005"),
		},
		Scan: ScanConfig{
			Cron: getenvWithDefault("SCAN_CRON", "*/30 * * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port == "" {
		return errors.New("PORT must be provided")
	}
	if c.Scan.Cron == "" {
		return errors.New("SCAN_CRON must be provided")
	}
	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
