package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"speech-relay/pkg/models"
)

// Config содержит все конфигурационные параметры приложения
type Config struct {
	App    AppConfig
	Auth   AuthConfig
	Speech SpeechConfig
}

// AppConfig содержит общие настройки приложения
type AppConfig struct {
	Env      string
	LogLevel string
	Port     int
}

// AuthConfig содержит настройки авторизации входящих запросов
type AuthConfig struct {
	APIKey string // Пустое значение отключает проверку авторизации
}

// SpeechConfig содержит настройки пайплайна синтеза по умолчанию
type SpeechConfig struct {
	DefaultVoice   string
	MaxConcurrency int
	MaxChunkSize   int
}

// Load загружает конфигурацию из переменных окружения и .env
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// App
	cfg.App.Env = getEnvDefault("APP_ENV", "development")
	cfg.App.LogLevel = getEnvDefault("LOG_LEVEL", "info")
	cfg.App.Port = getEnvIntDefault("APP_PORT", 8080)

	// Auth
	cfg.Auth.APIKey = os.Getenv("API_KEY")

	// Speech
	cfg.Speech.DefaultVoice = getEnvDefault("DEFAULT_VOICE", "zh-CN-XiaoxiaoNeural")
	cfg.Speech.MaxConcurrency = getEnvIntDefault("MAX_CONCURRENCY", 50)
	cfg.Speech.MaxChunkSize = getEnvIntDefault("MAX_CHUNK_SIZE", 2000)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return cfg, nil
}

func getEnvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// validateConfig проверяет корректность конфигурации
func validateConfig(config *Config) error {
	if config.App.Port < 1 || config.App.Port > 65535 {
		return fmt.Errorf("APP_PORT вне допустимого диапазона: %d", config.App.Port)
	}
	if config.Speech.MaxConcurrency < models.DefaultConcurrency {
		return fmt.Errorf("MAX_CONCURRENCY не может быть меньше %d", models.DefaultConcurrency)
	}
	if config.Speech.MaxChunkSize < models.DefaultChunkSize {
		return fmt.Errorf("MAX_CHUNK_SIZE не может быть меньше %d", models.DefaultChunkSize)
	}

	return nil
}

// IsDevelopment проверяет, запущено ли приложение в режиме разработки
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction проверяет, запущено ли приложение в продакшн режиме
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// GetLogLevel возвращает уровень логирования в формате zap
func (c *AppConfig) GetLogLevel() zap.AtomicLevel {
	switch c.LogLevel {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}
