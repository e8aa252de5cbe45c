package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"speech-relay/internal/azure"
)

// Synthesizer преобразует один чанк текста в аудио
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, p azure.VoiceParams) ([]byte, error)
}

// Recorder записывает метрики вызовов синтеза
type Recorder interface {
	RecordSynthesisCall(success bool, seconds float64)
}

// Sink представляет потребителя потокового аудио. Close вызывается
// на каждом пути выхода, успешном или нет
type Sink interface {
	io.Writer
	Flush()
	Close() error
}

// SinkError означает сбой доставки аудио потребителю: дальнейшие
// запросы к провайдеру не выполняются
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("ошибка записи в поток: %v", e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// Service прогоняет последовательность чанков через синтезатор окнами
// не больше лимита параллелизма. Окна обрабатываются строго по очереди,
// чанки внутри окна параллельно, порядок аудио всегда равен порядку чанков
type Service struct {
	synth   Synthesizer
	metrics Recorder
	logger  *zap.Logger
}

// NewService создает новый сервис пакетного синтеза
func NewService(synth Synthesizer, metrics Recorder, logger *zap.Logger) *Service {
	return &Service{
		synth:   synth,
		metrics: metrics,
		logger:  logger,
	}
}

// Synthesize синтезирует все чанки и возвращает единый аудио буфер.
// При сбое любого чанка частичное аудио не возвращается
func (s *Service) Synthesize(ctx context.Context, chunks []string, p azure.VoiceParams, limit int) ([]byte, error) {
	if limit < 1 {
		limit = 1
	}

	var out bytes.Buffer
	for start := 0; start < len(chunks); start += limit {
		end := start + limit
		if end > len(chunks) {
			end = len(chunks)
		}

		payloads, err := s.processWindow(ctx, chunks[start:end], start, p)
		if err != nil {
			return nil, err
		}

		for _, payload := range payloads {
			out.Write(payload)
		}
	}

	s.logger.Info("🎵 пакетный синтез завершен",
		zap.Int("chunks", len(chunks)),
		zap.Int("audio_size", out.Len()))

	return out.Bytes(), nil
}

// SynthesizeStream синтезирует чанки и отдает аудио потребителю по мере
// готовности окон. Уже отправленные окна при сбое остаются в потоке,
// оставшиеся окна не обрабатываются
func (s *Service) SynthesizeStream(ctx context.Context, chunks []string, p azure.VoiceParams, limit int, sink Sink) (err error) {
	if limit < 1 {
		limit = 1
	}

	defer func() {
		if closeErr := sink.Close(); closeErr != nil && err == nil {
			err = &SinkError{Err: closeErr}
		}
	}()

	for start := 0; start < len(chunks); start += limit {
		end := start + limit
		if end > len(chunks) {
			end = len(chunks)
		}

		payloads, windowErr := s.processWindow(ctx, chunks[start:end], start, p)
		if windowErr != nil {
			return windowErr
		}

		for _, payload := range payloads {
			if _, writeErr := sink.Write(payload); writeErr != nil {
				s.logger.Warn("потребитель потока отключился", zap.Error(writeErr))
				return &SinkError{Err: writeErr}
			}
		}
		sink.Flush()

		s.logger.Debug("🎵 окно отправлено в поток",
			zap.Int("window_start", start),
			zap.Int("window_size", end-start))
	}

	return nil
}

// processWindow параллельно синтезирует чанки одного окна и собирает
// результаты по позициям, а не в порядке завершения
func (s *Service) processWindow(ctx context.Context, window []string, offset int, p azure.VoiceParams) ([][]byte, error) {
	payloads := make([][]byte, len(window))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range window {
		i, chunk := i, chunk
		g.Go(func() error {
			started := time.Now()
			audio, err := s.synth.Synthesize(gctx, chunk, p)
			s.metrics.RecordSynthesisCall(err == nil, time.Since(started).Seconds())
			if err != nil {
				return fmt.Errorf("ошибка синтеза чанка %d: %w", offset+i, err)
			}
			payloads[i] = audio
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return payloads, nil
}
