package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Push       PushConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds device-token signing configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// AttendanceConfig holds the engine and monitor tunables
type AttendanceConfig struct {
	Timezone        string
	DailyCycleCap   int
	ApprovalTTL     time.Duration
	QRScanCooldown  time.Duration
	MonitorInterval time.Duration
}

// PushConfig holds the admin push gateway settings. An empty URL disables
// push dispatch.
type PushConfig struct {
	GatewayURL string
	APIKey     string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "24h"),
	}

	// Attendance configuration
	cycleCap, err := strconv.Atoi(getEnv("DAILY_CYCLE_CAP", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid DAILY_CYCLE_CAP: %w", err)
	}
	approvalTTL, err := time.ParseDuration(getEnv("APPROVAL_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid APPROVAL_TTL: %w", err)
	}
	qrCooldown, err := time.ParseDuration(getEnv("QR_SCAN_COOLDOWN", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid QR_SCAN_COOLDOWN: %w", err)
	}
	monitorInterval, err := time.ParseDuration(getEnv("MONITOR_INTERVAL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONITOR_INTERVAL: %w", err)
	}

	config.Attendance = AttendanceConfig{
		Timezone:        getEnv("TIMEZONE", "Asia/Jakarta"),
		DailyCycleCap:   cycleCap,
		ApprovalTTL:     approvalTTL,
		QRScanCooldown:  qrCooldown,
		MonitorInterval: monitorInterval,
	}

	config.Push = PushConfig{
		GatewayURL: getEnv("PUSH_GATEWAY_URL", ""),
		APIKey:     getEnv("PUSH_API_KEY", ""),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.DailyCycleCap < 1 {
		return fmt.Errorf("DAILY_CYCLE_CAP must be at least 1")
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
