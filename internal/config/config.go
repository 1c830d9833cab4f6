package config

import (
	"fmt"
	"os"
)

type Config struct {
	HTTPPort    string
	MetricsPort string
	Database    DatabaseConfig

	// InvoiceWorkerEnabled runs the invoice worker inside this process.
	InvoiceWorkerEnabled bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func Load() *Config {
	return &Config{
		HTTPPort:    getEnvOrDefault("PORT", "8080"),
		MetricsPort: getEnvOrDefault("METRICS_PORT", "9100"),
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			Name:     getEnvOrDefault("DB_NAME", "storefront"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		},
		InvoiceWorkerEnabled: getEnvOrDefault("INVOICE_WORKER_ENABLED", "true") == "true",
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
