package azure

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// Эндпоинт выдачи временного токена синтеза
	endpointURL = "https://dev.microsofttranslator.com/apps/endpoint?sign=true"

	// Фиксированный симметричный ключ подписи рукопожатия (base64)
	signingKey = "oik6PdDdMnOXemTbwvMn9de/h9lFnfBaCWbGMMZqqoSaQaqUOqjVGm5NqsmjcBI1x+sS9ugjB55HEJWRiFXYFw=="

	// Идентификатор клиента в подписываемой строке
	appID = "MSTranslatorAndroidApp"

	// Запас до истечения токена, после которого он считается устаревшим
	refreshSkew = 5 * time.Minute
)

// Credential представляет кэшируемый токен провайдера вместе с региональным
// эндпоинтом и моментом истечения
type Credential struct {
	Region    string    // Региональный идентификатор эндпоинта, например eastasia
	Token     string    // Bearer токен для запросов синтеза
	ExpiresAt time.Time // Момент истечения токена из claims
}

// endpointResponse представляет ответ эндпоинта рукопожатия
type endpointResponse struct {
	Region string `json:"r"`
	Token  string `json:"t"`
}

// RefreshRecorder записывает метрики обновлений токена
type RefreshRecorder interface {
	RecordTokenRefresh(success bool)
}

// TokenManager владеет единственным на процесс кэшем токена провайдера.
// Проверка срока и обновление выполняются под мьютексом, поэтому
// конкурентные запросы не порождают параллельных рукопожатий
type TokenManager struct {
	httpClient *http.Client
	logger     *zap.Logger
	metrics    RefreshRecorder

	mu   sync.Mutex
	cred *Credential

	// Подменяются в тестах
	handshakeURL string
	now          func() time.Time
}

// NewTokenManager создает новый менеджер токенов
func NewTokenManager(logger *zap.Logger) *TokenManager {
	return &TokenManager{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       logger,
		handshakeURL: endpointURL,
		now:          time.Now,
	}
}

// SetMetrics подключает запись метрик обновлений токена
func (m *TokenManager) SetMetrics(r RefreshRecorder) {
	m.metrics = r
}

// Credential возвращает действующий токен, обновляя его при необходимости.
// Если обновление не удалось, но предыдущий токен есть, возвращается он же:
// устаревший токен лучше отказа
func (m *TokenManager) Credential(ctx context.Context) (*Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cred != nil && m.now().Before(m.cred.ExpiresAt.Add(-refreshSkew)) {
		return m.cred, nil
	}

	cred, err := m.refresh(ctx)
	if m.metrics != nil {
		m.metrics.RecordTokenRefresh(err == nil)
	}
	if err != nil {
		if m.cred != nil {
			m.logger.Warn("не удалось обновить токен, используем предыдущий",
				zap.Error(err),
				zap.Time("expires_at", m.cred.ExpiresAt))
			return m.cred, nil
		}
		return nil, fmt.Errorf("ошибка получения токена: %w", err)
	}

	m.cred = cred
	return m.cred, nil
}

// refresh выполняет подписанное рукопожатие и разбирает полученный токен
func (m *TokenManager) refresh(ctx context.Context) (*Credential, error) {
	nonce := uuid.NewString()
	signature, err := m.sign(nonce)
	if err != nil {
		return nil, fmt.Errorf("ошибка вычисления подписи: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.handshakeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Accept-Language", "zh-Hans")
	req.Header.Set("X-ClientVersion", "4.0.530a 5fe1dc6c")
	req.Header.Set("X-UserId", "0f04d16a175c411e")
	req.Header.Set("X-HomeGeographicRegion", "zh-Hans-CN")
	req.Header.Set("X-ClientTraceId", nonce)
	req.Header.Set("X-MT-Signature", signature)
	req.Header.Set("User-Agent", "okhttp/4.5.0")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	m.logger.Info("запрашиваем новый токен синтеза")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка отправки запроса: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("рукопожатие вернуло статус %d: %s", resp.StatusCode, string(body))
	}

	var endpoint endpointResponse
	if err := json.Unmarshal(body, &endpoint); err != nil {
		return nil, fmt.Errorf("ошибка парсинга ответа: %w", err)
	}
	if endpoint.Region == "" || endpoint.Token == "" {
		return nil, fmt.Errorf("неполный ответ рукопожатия: %s", string(body))
	}

	expiresAt, err := tokenExpiry(endpoint.Token)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора срока токена: %w", err)
	}

	m.logger.Info("токен синтеза получен",
		zap.String("region", endpoint.Region),
		zap.Time("expires_at", expiresAt))

	return &Credential{
		Region:    endpoint.Region,
		Token:     endpoint.Token,
		ExpiresAt: expiresAt,
	}, nil
}

// sign вычисляет подпись рукопожатия: HMAC-SHA256 над строкой из
// идентификатора клиента, закодированного URL эндпоинта, даты и nonce
func (m *TokenManager) sign(nonce string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(signingKey)
	if err != nil {
		return "", fmt.Errorf("ошибка декодирования ключа: %w", err)
	}

	date := strings.ToLower(m.now().UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT"))
	encodedURL := url.QueryEscape(m.handshakeURL)
	toSign := strings.ToLower(appID + encodedURL + date + nonce)

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(toSign))
	digest := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("%s::%s::%s::%s", appID, digest, date, nonce), nil
}

// tokenExpiry извлекает момент истечения из claims токена без проверки
// подписи: валидирует токен провайдер, нам нужен только exp
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("в токене нет claim exp")
	}

	return exp.Time, nil
}
