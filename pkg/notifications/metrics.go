package notifications

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch results besides the rejection reasons.
const (
	resultAllowed       = "allowed"
	resultHandoffFailed = "handoff_failed"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	dispatchTotal    *prometheus.CounterVec
	deliveryTotal    *prometheus.CounterVec
	deliveryDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		dispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifyhub_dispatch_total",
				Help: "Dispatch requests by channel and eligibility result.",
			},
			[]string{"channel", "result"},
		),
		deliveryTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifyhub_delivery_total",
				Help: "Delivery attempts by channel and final status.",
			},
			[]string{"channel", "status"},
		),
		deliveryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "notifyhub_delivery_duration_seconds",
				Help:    "Duration of channel sends.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"channel"},
		),
	}
}

func (m *Metrics) observeDispatch(c Channel, result string) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(c.String(), result).Inc()
}

func (m *Metrics) observeDelivery(c Channel, status Status, took time.Duration) {
	if m == nil {
		return
	}
	m.deliveryTotal.WithLabelValues(c.String(), string(status)).Inc()
	m.deliveryDuration.WithLabelValues(c.String()).Observe(took.Seconds())
}
