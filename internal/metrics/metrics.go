package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Metrics содержит все метрики приложения
type Metrics struct {
	logger *zap.Logger

	// Счетчики
	speechRequests *prometheus.CounterVec
	synthesisCalls *prometheus.CounterVec
	tokenRefreshes *prometheus.CounterVec

	// Гистограммы
	synthesisDuration prometheus.Histogram
	chunksPerRequest  prometheus.Histogram

	// Gauge метрики
	requestsInFlight prometheus.Gauge
}

// New создает новый экземпляр метрик
func New(logger *zap.Logger) *Metrics {
	m := &Metrics{
		logger: logger,

		// Счетчики входящих запросов на синтез
		speechRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speech_requests_total",
				Help: "Общее количество запросов на синтез речи",
			},
			[]string{"mode", "status"}, // mode: buffered, streamed; status: success, failed
		),

		// Счетчики исходящих вызовов провайдера
		synthesisCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synthesis_calls_total",
				Help: "Общее количество вызовов провайдера синтеза",
			},
			[]string{"status"}, // success, failed
		),

		// Счетчики обновлений токена
		tokenRefreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "token_refreshes_total",
				Help: "Общее количество обновлений токена провайдера",
			},
			[]string{"status"}, // success, failed
		),

		// Гистограмма длительности одного вызова синтеза
		synthesisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "synthesis_duration_seconds",
				Help:    "Длительность одного вызова провайдера синтеза в секундах",
				Buckets: prometheus.DefBuckets,
			},
		),

		// Гистограмма количества чанков на запрос
		chunksPerRequest: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chunks_per_request",
				Help:    "Количество чанков текста в одном запросе",
				Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100, 200},
			},
		),

		// Gauge запросов в обработке
		requestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "speech_requests_in_flight",
				Help: "Количество запросов на синтез в обработке",
			},
		),
	}

	// Регистрируем все метрики
	prometheus.MustRegister(
		m.speechRequests,
		m.synthesisCalls,
		m.tokenRefreshes,
		m.synthesisDuration,
		m.chunksPerRequest,
		m.requestsInFlight,
	)

	return m
}

// RecordRequest записывает завершенный запрос на синтез
func (m *Metrics) RecordRequest(mode string, success bool) {
	status := "success"
	if !success {
		status = "failed"
	}
	m.speechRequests.WithLabelValues(mode, status).Inc()
}

// RecordSynthesisCall записывает один вызов провайдера синтеза
func (m *Metrics) RecordSynthesisCall(success bool, seconds float64) {
	status := "success"
	if !success {
		status = "failed"
	}
	m.synthesisCalls.WithLabelValues(status).Inc()
	m.synthesisDuration.Observe(seconds)
}

// RecordTokenRefresh записывает обновление токена провайдера
func (m *Metrics) RecordTokenRefresh(success bool) {
	status := "success"
	if !success {
		status = "failed"
	}
	m.tokenRefreshes.WithLabelValues(status).Inc()
}

// RecordChunks записывает количество чанков в запросе
func (m *Metrics) RecordChunks(count int) {
	m.chunksPerRequest.Observe(float64(count))
}

// RequestStarted отмечает начало обработки запроса
func (m *Metrics) RequestStarted() {
	m.requestsInFlight.Inc()
}

// RequestFinished отмечает конец обработки запроса
func (m *Metrics) RequestFinished() {
	m.requestsInFlight.Dec()
}
