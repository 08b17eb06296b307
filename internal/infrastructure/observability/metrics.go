// Package observability métricas Prometheus de la API.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"

	"github.com/jhoicas/produmax-api/internal/application/order"
)

var _ order.Metrics = (*Metrics)(nil)

// Metrics agrupa las métricas de la aplicación en un registry propio,
// así NewMetrics puede llamarse varias veces (tests) sin colisiones.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	ordersWritten    *prometheus.CounterVec
	lineItemFailures *prometheus.CounterVec
}

// NewMetrics crea el registry y registra todas las métricas.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "produmax_http_requests_total",
				Help: "Peticiones HTTP atendidas.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "produmax_http_request_duration_seconds",
				Help:    "Duración de las peticiones HTTP.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ordersWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "produmax_orders_written_total",
				Help: "Pedidos creados, actualizados o eliminados.",
			},
			[]string{"op"},
		),
		lineItemFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "produmax_order_item_failures_total",
				Help: "Líneas de pedido que no se pudieron escribir.",
			},
			[]string{"op"},
		),
	}
}

// OrderWritten incrementa el contador de pedidos por operación.
func (m *Metrics) OrderWritten(op string) {
	m.ordersWritten.WithLabelValues(op).Inc()
}

// LineItemFailed incrementa el contador de líneas fallidas por operación.
func (m *Metrics) LineItemFailed(op string) {
	m.lineItemFailures.WithLabelValues(op).Inc()
}

// ObserveHTTP registra una petición atendida.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// OrdersWritten valor actual del contador de pedidos para op.
func (m *Metrics) OrdersWritten(op string) float64 {
	return counterValue(m.ordersWritten, op)
}

// LineItemFailures valor actual del contador de líneas fallidas para op.
func (m *Metrics) LineItemFailures(op string) float64 {
	return counterValue(m.lineItemFailures, op)
}

func counterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		return 0
	}
	if metric.Counter != nil && metric.Counter.Value != nil {
		return *metric.Counter.Value
	}
	return 0
}
