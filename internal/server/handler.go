package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"go.uber.org/zap"

	"speech-relay/internal/azure"
	"speech-relay/internal/config"
	"speech-relay/internal/metrics"
	"speech-relay/internal/speech"
	"speech-relay/internal/text"
	"speech-relay/pkg/models"
)

// SpeechService представляет оркестратор пакетного синтеза
type SpeechService interface {
	Synthesize(ctx context.Context, chunks []string, p azure.VoiceParams, limit int) ([]byte, error)
	SynthesizeStream(ctx context.Context, chunks []string, p azure.VoiceParams, limit int, sink speech.Sink) error
}

// Handler обрабатывает HTTP запросы на синтез речи
type Handler struct {
	speech  SpeechService
	cfg     *config.Config
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewHandler создает новый обработчик запросов синтеза
func NewHandler(speechService SpeechService, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		speech:  speechService,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
	}
}

// HandleSpeech обрабатывает POST /v1/audio/speech
func (h *Handler) HandleSpeech(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.metrics != nil {
		h.metrics.RequestStarted()
		defer h.metrics.RequestFinished()
	}

	var req models.SpeechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("не удалось разобрать тело запроса", zap.Error(err))
		writeAPIError(w, http.StatusBadRequest, codeBadRequest, "request body is not valid JSON")
		return
	}

	if req.Input == "" {
		writeAPIError(w, http.StatusBadRequest, codeMissingInput, "'input' is a required field")
		return
	}

	speed := req.SpeedOrDefault()
	if speed < 0.25 || speed > 2.0 {
		writeAPIError(w, http.StatusBadRequest, codeInvalidSpeed, "'speed' must be between 0.25 and 2.0")
		return
	}

	voice, ok := resolveVoice(req.Voice, req.Model)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, codeUnknownVoice,
			fmt.Sprintf("unable to resolve a voice from model %q", req.Model))
		return
	}

	cleaned := text.Clean(req.Input, req.CleaningOptions.Resolve())
	chunks := text.Chunk(cleaned, h.chunkSize(&req))
	if len(chunks) == 0 {
		writeAPIError(w, http.StatusBadRequest, codeMissingInput, "input text is empty after cleaning")
		return
	}

	params := azure.VoiceParams{
		Voice:        voice,
		Style:        req.StyleOrDefault(),
		RatePercent:  int(math.Round((speed - 1) * 100)),
		PitchPercent: int(math.Round((req.PitchOrDefault() - 1) * 100)),
	}
	limit := h.concurrency(&req)

	if h.metrics != nil {
		h.metrics.RecordChunks(len(chunks))
	}

	h.logger.Info("🎵 запрос на синтез принят",
		zap.String("voice", voice),
		zap.Int("chunks", len(chunks)),
		zap.Int("concurrency", limit),
		zap.Bool("stream", req.Stream))

	if req.Stream {
		h.streamSpeech(w, r, chunks, params, limit)
		return
	}

	audio, err := h.speech.Synthesize(r.Context(), chunks, params, limit)
	if err != nil {
		h.recordRequest("buffered", false)
		h.writeSynthesisError(w, err)
		return
	}

	h.recordRequest("buffered", true)
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Write(audio)
}

// streamSpeech отдает аудио потребителю по мере готовности окон
func (h *Handler) streamSpeech(w http.ResponseWriter, r *http.Request, chunks []string, params azure.VoiceParams, limit int) {
	w.Header().Set("Content-Type", "audio/mpeg")

	sink := &httpSink{w: w}
	err := h.speech.SynthesizeStream(r.Context(), chunks, params, limit, sink)
	if err == nil {
		h.recordRequest("streamed", true)
		return
	}

	h.recordRequest("streamed", false)

	// Пока в поток ничего не ушло, клиенту еще можно ответить ошибкой.
	// После первого окна остается только оборвать поток
	if !sink.wrote {
		h.writeSynthesisError(w, err)
		return
	}

	h.logger.Error("поток оборван после частичной отдачи", zap.Error(err))
}

// writeSynthesisError превращает ошибку пайплайна синтеза в HTTP ответ
func (h *Handler) writeSynthesisError(w http.ResponseWriter, err error) {
	var provErr *azure.ProviderError
	if errors.As(err, &provErr) {
		h.logger.Error("провайдер синтеза вернул ошибку",
			zap.Int("status", provErr.StatusCode),
			zap.String("body", provErr.Body))
		writeAPIError(w, http.StatusBadGateway, codeProvider,
			fmt.Sprintf("synthesis provider returned status %d: %s", provErr.StatusCode, provErr.Body))
		return
	}

	h.logger.Error("ошибка пайплайна синтеза", zap.Error(err))
	writeAPIError(w, http.StatusBadGateway, codeCredential, err.Error())
}

func (h *Handler) recordRequest(mode string, success bool) {
	if h.metrics != nil {
		h.metrics.RecordRequest(mode, success)
	}
}

// concurrency возвращает лимит параллелизма запроса, обрезанный
// потолком из конфигурации
func (h *Handler) concurrency(req *models.SpeechRequest) int {
	limit := req.ConcurrencyOrDefault()
	if limit > h.cfg.Speech.MaxConcurrency {
		limit = h.cfg.Speech.MaxConcurrency
	}
	return limit
}

// chunkSize возвращает максимальную длину чанка запроса, обрезанную
// потолком из конфигурации
func (h *Handler) chunkSize(req *models.SpeechRequest) int {
	size := req.ChunkSizeOrDefault()
	if size > h.cfg.Speech.MaxChunkSize {
		size = h.cfg.Speech.MaxChunkSize
	}
	return size
}

// HandleModels обрабатывает GET /v1/models
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type modelEntry struct {
		ID      string `json:"id"`
		Object  string `json:"object"`
		OwnedBy string `json:"owned_by"`
	}

	entries := make([]modelEntry, 0, len(knownModels)+len(voiceAliases))
	for _, id := range knownModels {
		entries = append(entries, modelEntry{ID: id, Object: "model", OwnedBy: "speech-relay"})
	}
	for alias := range voiceAliases {
		entries = append(entries, modelEntry{ID: "tts-1-" + alias, Object: "model", OwnedBy: "speech-relay"})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data":   entries,
	})
}

// Middleware добавляет CORS заголовки и проверку ключа авторизации
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if h.cfg.Auth.APIKey != "" {
			if r.Header.Get("Authorization") != "Bearer "+h.cfg.Auth.APIKey {
				h.logger.Warn("запрос с неверным ключом авторизации",
					zap.String("path", r.URL.Path))
				writeAPIError(w, http.StatusUnauthorized, "invalid_api_key", "invalid or missing API key")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// httpSink адаптирует http.ResponseWriter под потоковый выход оркестратора
type httpSink struct {
	w     http.ResponseWriter
	wrote bool
}

func (s *httpSink) Write(p []byte) (int, error) {
	s.wrote = true
	return s.w.Write(p)
}

func (s *httpSink) Flush() {
	if flusher, ok := s.w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Close завершает поток: для HTTP ответа отдельного сигнала не нужно,
// соединение закрывает возврат из обработчика
func (s *httpSink) Close() error { return nil }
