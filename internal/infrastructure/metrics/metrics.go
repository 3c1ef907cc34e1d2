// Package metrics expone las métricas Prometheus del servicio sobre un registro propio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
)

var _ inventory.MovementObserver = (*Metrics)(nil)

// Metrics agrupa los colectores del ledger, HTTP y circuit breaker.
type Metrics struct {
	registry *prometheus.Registry

	// Ledger
	MovementsTotal  *prometheus.CounterVec
	UnitsTotal      *prometheus.CounterVec
	RejectionsTotal *prometheus.CounterVec
	ItemsGauge      prometheus.Gauge

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Circuit breaker
	CircuitBreakerState *prometheus.GaugeVec
}

// New crea el registro con los colectores estándar de Go y de proceso.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.MovementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_movements_total",
			Help:      "Movimientos aceptados por dirección",
		},
		[]string{"direction"},
	)
	m.UnitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_units_total",
			Help:      "Unidades movidas por dirección",
		},
		[]string{"direction"},
	)
	m.RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_rejections_total",
			Help:      "Movimientos rechazados por dirección y razón",
		},
		[]string{"direction", "reason"},
	)
	m.ItemsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_items",
			Help:      "Productos distintos registrados en el ledger",
		},
	)

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total de peticiones HTTP",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP en segundos",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Estado del circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	registry.MustRegister(
		m.MovementsTotal,
		m.UnitsTotal,
		m.RejectionsTotal,
		m.ItemsGauge,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CircuitBreakerState,
	)
	return m
}

// MovementAccepted cuenta un movimiento aplicado.
func (m *Metrics) MovementAccepted(direction string, quantity int) {
	m.MovementsTotal.WithLabelValues(direction).Inc()
	m.UnitsTotal.WithLabelValues(direction).Add(float64(quantity))
}

// MovementRejected cuenta un movimiento rechazado.
func (m *Metrics) MovementRejected(direction, reason string) {
	m.RejectionsTotal.WithLabelValues(direction, reason).Inc()
}

// ItemsTracked actualiza el número de productos registrados.
func (m *Metrics) ItemsTracked(n int) {
	m.ItemsGauge.Set(float64(n))
}

// ObserveHTTP registra una petición terminada. path debe ser la ruta registrada, no la URL.
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// CircuitStateChanged refleja el estado de un breaker (closed, half-open, open).
func (m *Metrics) CircuitStateChanged(name, state string) {
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(v)
}

// Handler handler HTTP para /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry registro de Prometheus.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
