package azure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Формат аудио на выходе провайдера
const outputFormat = "audio-24khz-48kbitrate-mono-mp3"

// ProviderError представляет неуспешный ответ провайдера синтеза
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("провайдер синтеза вернул статус %d: %s", e.StatusCode, e.Body)
}

// VoiceParams содержит параметры голоса и просодии одного запроса синтеза
type VoiceParams struct {
	Voice        string // Идентификатор голоса провайдера
	Style        string // Стиль речи
	RatePercent  int    // Скорость в процентах со знаком
	PitchPercent int    // Высота тона в процентах со знаком
}

// Client выполняет запросы синтеза речи к региональному эндпоинту провайдера
type Client struct {
	tokens     *TokenManager
	httpClient *http.Client
	logger     *zap.Logger

	// Подменяется в тестах
	synthesisURL func(region string) string
}

// NewClient создает новый клиент синтеза
func NewClient(tokens *TokenManager, logger *zap.Logger) *Client {
	return &Client{
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
		synthesisURL: func(region string) string {
			return fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region)
		},
	}
}

// Synthesize преобразует один чанк текста в аудио. Ретраев нет:
// политика обработки сбоев принадлежит оркестратору
func (c *Client) Synthesize(ctx context.Context, text string, p VoiceParams) ([]byte, error) {
	cred, err := c.tokens.Credential(ctx)
	if err != nil {
		return nil, err
	}

	ssml := BuildSSML(text, p.Voice, p.Style, p.RatePercent, p.PitchPercent)

	req, err := http.NewRequestWithContext(ctx, "POST", c.synthesisURL(cred.Region), strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cred.Token)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", outputFormat)
	req.Header.Set("User-Agent", "okhttp/4.5.0")

	c.logger.Debug("🎵 отправляем чанк на синтез",
		zap.String("voice", p.Voice),
		zap.Int("text_length", len(text)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка отправки запроса: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.logger.Debug("🎵 чанк синтезирован", zap.Int("audio_size", len(body)))

	return body, nil
}
