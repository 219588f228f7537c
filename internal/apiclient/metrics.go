package apiclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты обновления токена для метки result.
const (
	refreshOK      = "ok"
	refreshFailed  = "failed"
	refreshNoToken = "no_token"
)

// Metrics — метрики клиента. Нулевой (nil) *Metrics безопасен: все методы no-op.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	refresh  *prometheus.CounterVec
	waiters  prometheus.Counter
	retries  prometheus.Counter
}

// NewMetrics создаёт и регистрирует метрики в reg (nil — без регистрации).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pcrec_client_requests_total",
			Help: "Outgoing API requests by method and status code (0 = transport error).",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pcrec_client_request_duration_seconds",
			Help:    "Outgoing API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		refresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pcrec_client_token_refresh_total",
			Help: "Token refresh attempts by result.",
		}, []string{"result"}),
		waiters: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcrec_client_refresh_waiters_total",
			Help: "Requests that waited for a refresh started by another request.",
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcrec_client_retries_total",
			Help: "Requests re-issued after a 401.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.refresh, m.waiters, m.retries)
	}

	return m
}

// ObserveRequest реализует transport.Observer.
func (m *Metrics) ObserveRequest(method string, code int, dur time.Duration) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(method).Observe(dur.Seconds())
}

func (m *Metrics) refreshResult(result string) {
	if m == nil {
		return
	}

	m.refresh.WithLabelValues(result).Inc()
}

func (m *Metrics) waiter() {
	if m == nil {
		return
	}

	m.waiters.Inc()
}

func (m *Metrics) retry() {
	if m == nil {
		return
	}

	m.retries.Inc()
}
