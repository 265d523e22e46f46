package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string
	BaseURL  string

	// Database
	DatabaseDSN   string
	MigrationsURL string

	// Sessions and tokens
	SessionLifetime time.Duration
	JWTSecret       string
	JWTExpiration   time.Duration

	// CORS
	CORSAllowedOrigins []string

	// Mail
	MailFrom string

	// OAuth
	DiscordKey         string
	DiscordSecret      string
	DiscordCallbackURL string
	GoogleKey          string
	GoogleSecret       string
	GoogleCallbackURL  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseDSN:        getEnv("DATABASE_DSN", "file:bracket_admin.db?_journal_mode=WAL&_foreign_keys=on&_txlock=immediate"),
		MigrationsURL:      getEnv("MIGRATIONS_URL", "file://migrations"),
		SessionLifetime:    parseDuration(getEnv("SESSION_LIFETIME", "24h"), 24*time.Hour),
		JWTSecret:          getEnv("JWT_SECRET", "change-me"),
		JWTExpiration:      parseDuration(getEnv("JWT_EXPIRATION", "24h"), 24*time.Hour),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		MailFrom:           getEnv("MAIL_FROM", "noreply@bracket-admin.local"),
		DiscordKey:         os.Getenv("DISCORD_KEY"),
		DiscordSecret:      os.Getenv("DISCORD_SECRET"),
		DiscordCallbackURL: os.Getenv("DISCORD_CALLBACK_URL"),
		GoogleKey:          os.Getenv("GOOGLE_KEY"),
		GoogleSecret:       os.Getenv("GOOGLE_SECRET"),
		GoogleCallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
