package main

import (
	"os"
	"strconv"
)

// Config holds all application configuration, read from the environment.
type Config struct {
	Port string

	// Database configuration. DBDriver selects postgres (production) or
	// sqlite (local development and tests); DBDSN is the postgres DSN or the
	// sqlite file path.
	DBDriver      string
	DBDSN         string
	DBAutoMigrate bool

	JWTSecret  string
	UploadBase string

	// Claim-ticket code encryption key material.
	ClaimTicketKey string

	// Front-end origins for CORS and reset-link construction.
	WebURL   string
	AdminURL string

	// SMTP settings for password-reset mail. Leaving SMTPHost empty disables
	// sending; links are logged instead.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	LogLevel string
}

// LoadConfig reads configuration from environment variables with defaults.
func LoadConfig() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DBDSN:          getEnv("DB_DSN", ""),
		DBAutoMigrate:  getEnvAsBool("DB_AUTO_MIGRATE", true),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		UploadBase:     getEnv("UPLOAD_BASE", "uploads"),
		ClaimTicketKey: getEnv("CLAIM_TICKET_KEY", ""),
		WebURL:         getEnv("WEB_URL", "http://localhost:3000"),
		AdminURL:       getEnv("ADMIN_URL", "http://localhost:3001"),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:       getEnv("SMTP_FROM", "no-reply@munlink.local"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
