package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config конфигурация сервера
type Config struct {
	// Сервер
	Port           string        `json:"port"`
	RequestTimeout time.Duration `json:"request_timeout"`

	// Базы данных
	StagingDatabasePath   string `json:"staging_database_path"`
	PromotionDatabasePath string `json:"promotion_database_path"`

	// Connection pooling
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`

	// Пайплайн промоции
	RetryAttempts    int           `json:"retry_attempts"`
	RetryBaseDelay   time.Duration `json:"retry_base_delay"`
	FreshnessWindow  time.Duration `json:"freshness_window"`
	DefaultIterations int          `json:"default_iterations"`

	// Ошибки и уведомления
	NotificationSeverity string `json:"notification_severity"`

	// Rate limit для API
	RateLimitPerSecond float64 `json:"rate_limit_per_second"`
	RateLimitBurst     int     `json:"rate_limit_burst"`

	// Логирование
	LogLevel string `json:"log_level"`
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	config := &Config{
		// Сервер
		Port:           getEnv("SERVER_PORT", "9090"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),

		// Базы данных
		StagingDatabasePath:   getEnv("STAGING_DATABASE_PATH", "staging.db"),
		PromotionDatabasePath: getEnv("PROMOTION_DATABASE_PATH", "promotion.db"),

		// Connection pooling
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		// Пайплайн промоции
		RetryAttempts:     getEnvInt("PROMOTION_RETRY_ATTEMPTS", 3),
		RetryBaseDelay:    getEnvDuration("PROMOTION_RETRY_BASE_DELAY", 2*time.Second),
		FreshnessWindow:   getEnvDuration("ARTIFACT_FRESHNESS_WINDOW", 24*time.Hour),
		DefaultIterations: getEnvInt("SIMULATION_DEFAULT_ITERATIONS", 10000),

		// Ошибки и уведомления
		NotificationSeverity: getEnv("NOTIFICATION_SEVERITY", "high"),

		// Rate limit
		RateLimitPerSecond: getEnvFloat("RATE_LIMIT_PER_SECOND", 25),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 50),

		// Логирование
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.StagingDatabasePath == "" {
		return fmt.Errorf("staging database path is required")
	}
	if c.PromotionDatabasePath == "" {
		return fmt.Errorf("promotion database path is required")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry attempts must be >= 1, got %d", c.RetryAttempts)
	}
	if c.FreshnessWindow <= 0 {
		return fmt.Errorf("freshness window must be positive, got %s", c.FreshnessWindow)
	}
	if c.DefaultIterations < 1 {
		return fmt.Errorf("default iterations must be >= 1, got %d", c.DefaultIterations)
	}
	switch c.NotificationSeverity {
	case "low", "medium", "high", "critical":
	default:
		return fmt.Errorf("unknown notification severity: %q", c.NotificationSeverity)
	}
	return nil
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения как float64 или возвращает значение по умолчанию
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
