package main

import (
	"os"
	"strconv"
	"strings"

	"real-estate-matching/internal/config"
)

// getEnv returns the environment variable or defaultValue when unset
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns the environment variable if set, otherwise the config value
func getEnvOrConfig(configValue, envKey string) string {
	return getEnv(envKey, configValue)
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// applyEnvOverrides lets deployment environments override file settings
func applyEnvOverrides(cfg *config.Config) {
	cfg.Server.Port = getEnvOrConfig(cfg.Server.Port, "PORT")
	cfg.Server.AdminToken = getEnvOrConfig(cfg.Server.AdminToken, "ADMIN_TOKEN")
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = strings.Split(origins, ",")
	}

	cfg.Database.Type = getEnvOrConfig(cfg.Database.Type, "DB_TYPE")
	switch cfg.Database.Type {
	case "mysql":
		my := &cfg.Database.MySQL
		my.Host = getEnvOrConfig(my.Host, "DB_HOST")
		my.Port = getEnvInt("DB_PORT", my.Port)
		my.User = getEnvOrConfig(my.User, "DB_USER")
		my.Password = getEnvOrConfig(my.Password, "DB_PASSWORD")
		my.Database = getEnvOrConfig(my.Database, "DB_NAME")
	case "postgres":
		pg := &cfg.Database.Postgres
		pg.Host = getEnvOrConfig(pg.Host, "DB_HOST")
		pg.Port = getEnvInt("DB_PORT", pg.Port)
		pg.User = getEnvOrConfig(pg.User, "DB_USER")
		pg.Password = getEnvOrConfig(pg.Password, "DB_PASSWORD")
		pg.Database = getEnvOrConfig(pg.Database, "DB_NAME")
		pg.SSLMode = getEnvOrConfig(pg.SSLMode, "DB_SSLMODE")
	case "sqlite":
		cfg.Database.SQLite.Path = getEnvOrConfig(cfg.Database.SQLite.Path, "SQLITE_PATH")
	}

	cfg.Redis.Addr = getEnvOrConfig(cfg.Redis.Addr, "REDIS_ADDR")
	cfg.Redis.Password = getEnvOrConfig(cfg.Redis.Password, "REDIS_PASSWORD")
	cfg.NATS.URL = getEnvOrConfig(cfg.NATS.URL, "NATS_URL")
	cfg.Auth.JWTSecret = getEnvOrConfig(cfg.Auth.JWTSecret, "JWT_SECRET")
	cfg.Logging.Level = getEnvOrConfig(cfg.Logging.Level, "LOG_LEVEL")
}
