// Package config collects process settings from the environment once at
// startup. The resulting value is passed into constructors explicitly; no
// package reads the environment on its own.
package config

import "tasknest/internal/util"

// Config holds everything the process needs to start.
type Config struct {
	Addr          string
	DBPath        string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
	UploadsDir    string
	// BaseURL is the public origin used to build image URLs.
	BaseURL string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
}

// FromEnv reads the configuration with development-friendly defaults.
func FromEnv() Config {
	return Config{
		Addr:          util.EnvOrDefault("TASKNEST_ADDR", ":8080"),
		DBPath:        util.EnvOrDefault("TASKNEST_DB_PATH", "data/tasknest.db"),
		RedisAddr:     util.EnvOrDefault("TASKNEST_REDIS_ADDR", "localhost:6379"),
		RedisPassword: util.EnvOrDefault("TASKNEST_REDIS_PASSWORD", ""),
		JWTSecret:     util.EnvOrDefault("TASKNEST_JWT_SECRET", "dev-secret-change-me"),
		UploadsDir:    util.EnvOrDefault("TASKNEST_UPLOADS_DIR", "uploads"),
		BaseURL:       util.EnvOrDefault("TASKNEST_BASE_URL", "http://localhost:8080"),

		GoogleClientID:     util.EnvOrDefault("TASKNEST_GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: util.EnvOrDefault("TASKNEST_GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  util.EnvOrDefault("TASKNEST_GOOGLE_REDIRECT_URI", ""),
	}
}
