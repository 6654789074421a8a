package config

import (
	"log/slog"
	"os"
)

type Config struct {
	Port        string
	Env         string
	DatabaseDSN string
	TokenSecret string
}

func Load() Config {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseDSN: getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/tripmate?parseTime=true"),
		TokenSecret: getEnv("TOKEN_SECRET", ""),
	}

	if cfg.Env == "production" && cfg.TokenSecret == "" {
		slog.Error("TOKEN_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
