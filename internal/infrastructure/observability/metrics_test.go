package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Contadores(t *testing.T) {
	m := NewMetrics()
	m.OrderWritten("create")
	m.OrderWritten("create")
	m.LineItemFailed("update")

	assert.Equal(t, float64(2), m.OrdersWritten("create"))
	assert.Equal(t, float64(0), m.OrdersWritten("delete"))
	assert.Equal(t, float64(1), m.LineItemFailures("update"))
}

func TestMetrics_HandlerExponeMetricas(t *testing.T) {
	m := NewMetrics()
	m.ObserveHTTP("GET", "/api/orders", 200, 15*time.Millisecond)
	m.OrderWritten("delete")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `produmax_http_requests_total{method="GET",route="/api/orders",status="200"} 1`)
	assert.Contains(t, string(body), `produmax_orders_written_total{op="delete"} 1`)
}

func TestMetrics_RegistrosIndependientes(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}
