// Package metrics defines the Prometheus instruments for the draft
// lifecycle. Instruments are registered once and shared by the controller
// and both front ends; /metrics on the HTTP server exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the lifecycle instruments. A nil *Metrics is a no-op, so
// tests can pass nil instead of a registry.
type Metrics struct {
	draftsGenerated    prometheus.Counter
	generationFailures prometheus.Counter
	draftsSent         prometheus.Counter
	deliveryFailures   prometheus.Counter
	draftsDiscarded    prometheus.Counter
}

// New registers the lifecycle instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		draftsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "ghostwriter_drafts_generated_total",
			Help: "Drafts successfully generated and stored for review.",
		}),
		generationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ghostwriter_generation_failures_total",
			Help: "Draft requests that failed at resolution or generation.",
		}),
		draftsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "ghostwriter_drafts_sent_total",
			Help: "Drafts delivered successfully.",
		}),
		deliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ghostwriter_delivery_failures_total",
			Help: "Send attempts that failed; the draft stays retryable.",
		}),
		draftsDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "ghostwriter_drafts_discarded_total",
			Help: "Drafts discarded by the user or the idle janitor.",
		}),
	}
}

// RegisterSessionGauge exposes the current number of live sessions.
func RegisterSessionGauge(reg prometheus.Registerer, count func() int) {
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "ghostwriter_active_sessions",
		Help: "Sessions currently holding a non-terminal draft.",
	}, func() float64 { return float64(count()) })
}

func (m *Metrics) DraftGenerated() {
	if m != nil {
		m.draftsGenerated.Inc()
	}
}

func (m *Metrics) GenerationFailed() {
	if m != nil {
		m.generationFailures.Inc()
	}
}

func (m *Metrics) DraftSent() {
	if m != nil {
		m.draftsSent.Inc()
	}
}

func (m *Metrics) DeliveryFailed() {
	if m != nil {
		m.deliveryFailures.Inc()
	}
}

func (m *Metrics) DraftDiscarded() {
	if m != nil {
		m.draftsDiscarded.Inc()
	}
}
