package azure

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

// makeJWT собирает токен без подписи с заданным exp
func makeJWT(t *testing.T, exp time.Time) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]any{"exp": exp.Unix()})
	if err != nil {
		t.Fatalf("ошибка сборки payload: %v", err)
	}

	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".x"
}

func newTestManager(t *testing.T, handler http.Handler, now time.Time) (*TokenManager, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m := NewTokenManager(zap.NewNop())
	m.handshakeURL = server.URL
	m.now = func() time.Time { return now }

	return m, server
}

func TestCredentialCachedNoHandshake(t *testing.T) {
	var calls atomic.Int32
	now := time.Now()

	m, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}), now)

	m.cred = &Credential{
		Region:    "eastasia",
		Token:     "cached",
		ExpiresAt: now.Add(time.Hour),
	}

	cred, err := m.Credential(context.Background())
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if cred.Token != "cached" {
		t.Errorf("ожидался кэшированный токен, получен %q", cred.Token)
	}
	if calls.Load() != 0 {
		t.Errorf("рукопожатие не должно было выполняться, вызовов: %d", calls.Load())
	}
}

func TestCredentialRefreshesWithinSkew(t *testing.T) {
	var calls atomic.Int32
	now := time.Now()

	m, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprintf(w, `{"r":"eastasia","t":"%s"}`, makeJWT(t, now.Add(10*time.Hour)))
	}), now)

	// Токен истекает через 2 минуты: меньше запаса в 5 минут
	m.cred = &Credential{
		Region:    "eastasia",
		Token:     "old",
		ExpiresAt: now.Add(2 * time.Minute),
	}

	cred, err := m.Credential(context.Background())
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("ожидалось одно рукопожатие, вызовов: %d", calls.Load())
	}
	if cred.Token == "old" {
		t.Error("токен не обновился")
	}
}

func TestCredentialConcurrentSingleHandshake(t *testing.T) {
	var calls atomic.Int32
	now := time.Now()

	m, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		fmt.Fprintf(w, `{"r":"westus","t":"%s"}`, makeJWT(t, now.Add(10*time.Hour)))
	}), now)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cred, err := m.Credential(context.Background())
			if err != nil {
				t.Errorf("неожиданная ошибка: %v", err)
				return
			}
			if cred.Region != "westus" {
				t.Errorf("неожиданный регион %q", cred.Region)
			}
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("конкурентный доступ породил %d рукопожатий вместо одного", calls.Load())
	}
}

func TestCredentialStaleServedOnRefreshFailure(t *testing.T) {
	now := time.Now()

	m, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "endpoint down", http.StatusInternalServerError)
	}), now)

	m.cred = &Credential{
		Region:    "eastasia",
		Token:     "stale",
		ExpiresAt: now.Add(-time.Hour),
	}

	cred, err := m.Credential(context.Background())
	if err != nil {
		t.Fatalf("устаревший токен должен отдаваться без ошибки, получено: %v", err)
	}
	if cred.Token != "stale" {
		t.Errorf("ожидался устаревший токен, получен %q", cred.Token)
	}
}

func TestCredentialErrorWithoutPrior(t *testing.T) {
	m, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "endpoint down", http.StatusInternalServerError)
	}), time.Now())

	if _, err := m.Credential(context.Background()); err == nil {
		t.Fatal("ожидалась ошибка при недоступном рукопожатии без кэша")
	}

	// Состояние остается пустым, следующий вызов повторит попытку
	if m.cred != nil {
		t.Error("кэш не должен заполняться после сбоя")
	}
}

func TestSignFormat(t *testing.T) {
	m := NewTokenManager(zap.NewNop())
	m.now = func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) }

	signature, err := m.sign("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	parts := strings.Split(signature, "::")
	if len(parts) != 4 {
		t.Fatalf("ожидалось 4 части подписи, получено %d: %s", len(parts), signature)
	}
	if parts[0] != "MSTranslatorAndroidApp" {
		t.Errorf("неверный идентификатор клиента: %s", parts[0])
	}
	if parts[2] != "thu, 15 jan 2026 12:00:00 gmt" {
		t.Errorf("неверный формат даты: %s", parts[2])
	}
	if _, err := base64.StdEncoding.DecodeString(parts[1]); err != nil {
		t.Errorf("подпись не является base64: %v", err)
	}
}
