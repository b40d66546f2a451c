// Package metrics contadores Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-manager-api/internal/application/inventory"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

const namespace = "stock_manager"

// Metrics agrupa los colectores sobre un registro propio.
type Metrics struct {
	registry *prometheus.Registry

	movements        *prometheus.CounterVec
	movementUnits    *prometheus.CounterVec
	movementRejected *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	lowStockSweeps   prometheus.Counter
}

var _ inventory.MovementMetrics = (*Metrics)(nil)

// New registra los colectores (más los de runtime de Go y del proceso).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		movements: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "Movimientos de stock confirmados por tipo.",
		}, []string{"type"}),
		movementUnits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movement_units_total",
			Help:      "Unidades movidas por tipo.",
		}, []string{"type"}),
		movementRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_rejected_total",
			Help:      "Movimientos rechazados por motivo.",
		}, []string{"reason"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y código.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		lowStockSweeps: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "low_stock_notifications_total",
			Help:      "Notificaciones creadas por el barrido de stock bajo.",
		}),
	}
}

// MovementRecorded implementa inventory.MovementMetrics.
func (m *Metrics) MovementRecorded(t entity.MovementType, quantity int) {
	m.movements.WithLabelValues(string(t)).Inc()
	m.movementUnits.WithLabelValues(string(t)).Add(float64(quantity))
}

// MovementRejected implementa inventory.MovementMetrics.
func (m *Metrics) MovementRejected(reason string) {
	m.movementRejected.WithLabelValues(reason).Inc()
}

// ObserveHTTP registra una petición. route es el patrón (/products/:id), no la URL.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// LowStockNotified suma las notificaciones de un barrido.
func (m *Metrics) LowStockNotified(n int) {
	m.lowStockSweeps.Add(float64(n))
}

// Handler expone el registro en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
