package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoadConfig(t *testing.T) {
	// Устанавливаем переменные окружения для теста
	os.Setenv("API_KEY", "test_api_key")
	os.Setenv("APP_PORT", "9090")
	defer os.Unsetenv("API_KEY")
	defer os.Unsetenv("APP_PORT")

	// Загружаем конфигурацию
	cfg, err := Load()

	// Проверяем, что конфигурация загружена без ошибок
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// Проверяем значения
	assert.Equal(t, "test_api_key", cfg.Auth.APIKey)
	assert.Equal(t, 9090, cfg.App.Port)

	// Проверяем значения по умолчанию
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "zh-CN-XiaoxiaoNeural", cfg.Speech.DefaultVoice)
	assert.Equal(t, 50, cfg.Speech.MaxConcurrency)
	assert.Equal(t, 2000, cfg.Speech.MaxChunkSize)
}

func TestAppConfigMethods(t *testing.T) {
	cfg := &AppConfig{
		Env:      "development",
		LogLevel: "debug",
	}

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.Env = "production"
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.IsProduction())
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zap.AtomicLevel
	}{
		{"debug", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"info", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"warn", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"error", zap.NewAtomicLevelAt(zap.ErrorLevel)},
		{"unknown", zap.NewAtomicLevelAt(zap.InfoLevel)},
	}

	for _, tt := range tests {
		cfg := &AppConfig{LogLevel: tt.level}
		assert.Equal(t, tt.want, cfg.GetLogLevel())
	}
}

func TestValidateConfig(t *testing.T) {
	// Тест с некорректным портом
	cfg := &Config{}
	err := validateConfig(cfg)
	assert.Error(t, err)

	// Тест с корректной конфигурацией
	cfg = &Config{
		App: AppConfig{Port: 8080},
		Speech: SpeechConfig{
			MaxConcurrency: 50,
			MaxChunkSize:   2000,
		},
	}
	err = validateConfig(cfg)
	assert.NoError(t, err)
}
