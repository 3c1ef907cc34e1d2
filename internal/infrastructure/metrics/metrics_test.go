package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/metrics"
)

func TestMetrics_MovimientosYRechazos(t *testing.T) {
	m := metrics.New("inventario")

	m.MovementAccepted("receive", 10)
	m.MovementAccepted("receive", 5)
	m.MovementAccepted("issue", 3)
	m.MovementRejected("issue", "insufficient_stock")
	m.ItemsTracked(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MovementsTotal.WithLabelValues("receive")))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.UnitsTotal.WithLabelValues("receive")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.UnitsTotal.WithLabelValues("issue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectionsTotal.WithLabelValues("issue", "insufficient_stock")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ItemsGauge))
}

func TestMetrics_EstadoDelBreaker(t *testing.T) {
	m := metrics.New("inventario")

	m.CircuitStateChanged("catalog", "open")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("catalog")))

	m.CircuitStateChanged("catalog", "half-open")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("catalog")))

	m.CircuitStateChanged("catalog", "closed")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("catalog")))
}

func TestMetrics_Handler(t *testing.T) {
	m := metrics.New("inventario")
	m.MovementAccepted("receive", 1)
	m.ObserveHTTP("POST", "/api/inventory/receive", 201, 12*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "inventario_ledger_movements_total")
	assert.Contains(t, string(body), "inventario_http_requests_total")
}
