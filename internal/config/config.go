package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the portal server settings, loaded from the environment.
type Config struct {
	HTTPPort int    `env:"HTTP_PORT" default:"3000"`
	BindAddr string `env:"BIND_ADDR" default:"0.0.0.0"`

	// Admin authentication: a shared secret compared against the token
	// field of submit requests. Not a security boundary.
	AdminToken string `env:"ADMIN_TOKEN" required:"true"`

	// Static portal assets (login page, themes, speed test).
	StaticDir string `env:"STATIC_DIR" default:"./public"`

	// VAPID identity for device push.
	VapidPublicKey  string `env:"VAPID_PUBLIC_KEY"`
	VapidPrivateKey string `env:"VAPID_PRIVATE_KEY"`
	VapidSubject    string `env:"VAPID_SUBJECT" default:"mailto:admin@localhost"`

	CORSOrigin string `env:"CORS_ORIGIN" default:"*"`
	LogLevel   string `env:"LOG_LEVEL" default:"info"`

	// Submit endpoint throttle, per client IP.
	SendRate  float64 `env:"SEND_RATE" default:"1"`
	SendBurst int     `env:"SEND_BURST" default:"5"`
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first when one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		// no .env file is fine, system env vars still apply
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	config := &Config{}

	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 3000); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.BindAddr, "BIND_ADDR", "0.0.0.0"); err != nil {
		return nil, err
	}
	if err := loadEnvStringRequired(&config.AdminToken, "ADMIN_TOKEN"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.StaticDir, "STATIC_DIR", "./public"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.VapidPublicKey, "VAPID_PUBLIC_KEY", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.VapidPrivateKey, "VAPID_PRIVATE_KEY", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.VapidSubject, "VAPID_SUBJECT", "mailto:admin@localhost"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.CORSOrigin, "CORS_ORIGIN", "*"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "info"); err != nil {
		return nil, err
	}
	if err := loadEnvFloat(&config.SendRate, "SEND_RATE", 1); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.SendBurst, "SEND_BURST", 5); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	value := os.Getenv(key)
	if value == "" {
		*target = defaultValue
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer for %s: %q", key, value)
	}
	*target = parsed
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	value := os.Getenv(key)
	if value == "" {
		*target = defaultValue
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number for %s: %q", key, value)
	}
	*target = parsed
	return nil
}
