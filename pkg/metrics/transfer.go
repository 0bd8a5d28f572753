package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TransferMetrics métricas del motor de traslados. Un *TransferMetrics nil es válido y no registra nada.
type TransferMetrics struct {
	transfers *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	items     *prometheus.CounterVec
	orphans   prometheus.Counter
}

// NewTransferMetrics registra las métricas en el registerer indicado.
func NewTransferMetrics(reg prometheus.Registerer) *TransferMetrics {
	if reg == nil {
		return &TransferMetrics{}
	}
	transfers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_transfers_total",
		Help: "Traslados de inventario por estado final.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_transfer_duration_seconds",
		Help:    "Duración de un traslado completo en segundos.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	items := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_transfer_items_total",
		Help: "Ítems procesados por camino (atomic|manual) y resultado.",
	}, []string{"path", "result"})
	orphans := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_transfer_orphans_linked_total",
		Help: "Facturas de traslado enlazadas al libro por el barrido.",
	})
	reg.MustRegister(transfers, duration, items, orphans)
	return &TransferMetrics{
		transfers: transfers,
		duration:  duration,
		items:     items,
		orphans:   orphans,
	}
}

// ObserveTransfer registra un traslado terminado.
func (m *TransferMetrics) ObserveTransfer(outcome string, d time.Duration) {
	if m == nil || m.transfers == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.transfers.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

// IncItem cuenta un ítem procesado.
func (m *TransferMetrics) IncItem(path, result string) {
	if m == nil || m.items == nil {
		return
	}
	m.items.WithLabelValues(normalizeLabel(path), normalizeLabel(result)).Inc()
}

// AddOrphansLinked suma las facturas enlazadas por LinkOrphans.
func (m *TransferMetrics) AddOrphansLinked(n int64) {
	if m == nil || m.orphans == nil || n <= 0 {
		return
	}
	m.orphans.Add(float64(n))
}

func normalizeLabel(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "unknown"
	}
	return v
}
