package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"speech-relay/internal/azure"
	"speech-relay/internal/config"
	"speech-relay/internal/metrics"
	"speech-relay/internal/server"
	"speech-relay/internal/speech"

	"go.uber.org/zap"
)

func main() {
	// Инициализация логгера
	logger, err := initLogger()
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("запуск приложения Speech Relay")

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("ошибка загрузки конфигурации", zap.Error(err))
	}

	// Инициализация метрик
	metricsSystem := metrics.New(logger)
	metricsHandler := metrics.NewHandler(metricsSystem, logger)

	// Инициализация менеджера токенов провайдера: один на процесс,
	// разделяется всеми запросами
	tokenManager := azure.NewTokenManager(logger)
	tokenManager.SetMetrics(metricsSystem)

	// Инициализация клиента синтеза и оркестратора
	synthClient := azure.NewClient(tokenManager, logger)
	speechService := speech.NewService(synthClient, metricsSystem, logger)

	// Инициализация HTTP обработчиков
	handler := server.NewHandler(speechService, cfg, metricsSystem, logger)

	if cfg.Auth.APIKey == "" {
		logger.Warn("API_KEY не установлен, авторизация отключена")
	}

	mux := http.NewServeMux()
	mux.Handle("/v1/audio/speech", handler.Middleware(http.HandlerFunc(handler.HandleSpeech)))
	mux.Handle("/v1/models", handler.Middleware(http.HandlerFunc(handler.HandleModels)))
	mux.Handle("/metrics", metricsHandler.MetricsHandler())
	mux.HandleFunc("/health", metricsHandler.HealthHandler)

	httpServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.App.Port),
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
		// Таймаут записи не ставим: потоковые ответы живут дольше
	}

	// Обработка сигналов для graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("HTTP сервер запущен",
			zap.String("address", httpServer.Addr),
			zap.String("env", cfg.App.Env))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("ошибка HTTP сервера", zap.Error(err))
		}
	}()

	// Ожидание сигнала завершения
	<-sigChan
	logger.Info("получен сигнал завершения, начинаем graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("ошибка при остановке HTTP сервера", zap.Error(err))
	}

	logger.Info("приложение завершено")
}

// initLogger инициализирует логгер
func initLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "production" {
		return zap.NewProduction()
	}

	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build()
}
