package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the enrollment service. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	// Agent request latency by operation and outcome.
	AgentCallDuration *prometheus.HistogramVec

	// Enrollment finalisations by outcome.
	Enrollments *prometheus.CounterVec

	// Combined templates emitted by the aggregator.
	TemplatesListed prometheus.Counter

	// Relay traffic by event kind.
	RelayForwarded *prometheus.CounterVec
	RelayDropped   *prometheus.CounterVec

	RelayObservers  prometheus.Gauge
	RelayAgentState prometheus.Gauge
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AgentCallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enrollment_agent_call_duration_seconds",
			Help:    "Duration of capture agent requests by operation and outcome",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation", "outcome"}),

		Enrollments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_saves_total",
			Help: "Enrollment finalisations by outcome",
		}, []string{"outcome"}),

		TemplatesListed: f.NewCounter(prometheus.CounterOpts{
			Name: "enrollment_combined_templates_listed_total",
			Help: "Combined templates returned by the aggregator",
		}),

		RelayForwarded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_relay_events_forwarded_total",
			Help: "Agent events delivered to observers, counted per observer",
		}, []string{"event"}),

		RelayDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_relay_events_dropped_total",
			Help: "Agent events dropped for slow observers",
		}, []string{"event"}),

		RelayObservers: f.NewGauge(prometheus.GaugeOpts{
			Name: "enrollment_relay_observers",
			Help: "Currently connected event observers",
		}),

		RelayAgentState: f.NewGauge(prometheus.GaugeOpts{
			Name: "enrollment_relay_agent_connected",
			Help: "1 while the agent event stream is connected",
		}),
	}
}

// ObserveAgentCall records the duration of one agent request.
func (m *Metrics) ObserveAgentCall(operation, outcome string, d time.Duration) {
	if m != nil {
		m.AgentCallDuration.WithLabelValues(operation, outcome).Observe(d.Seconds())
	}
}

// IncrementEnrollment records an enrollment outcome.
func (m *Metrics) IncrementEnrollment(outcome string) {
	if m != nil {
		m.Enrollments.WithLabelValues(outcome).Inc()
	}
}

// AddTemplatesListed counts records emitted by one aggregation.
func (m *Metrics) AddTemplatesListed(n int) {
	if m != nil {
		m.TemplatesListed.Add(float64(n))
	}
}

// IncrementForwarded counts one delivery of event to one observer.
func (m *Metrics) IncrementForwarded(event string) {
	if m != nil {
		m.RelayForwarded.WithLabelValues(event).Inc()
	}
}

// IncrementDropped counts one event dropped for one slow observer.
func (m *Metrics) IncrementDropped(event string) {
	if m != nil {
		m.RelayDropped.WithLabelValues(event).Inc()
	}
}

// SetObservers sets the connected observer gauge.
func (m *Metrics) SetObservers(n int) {
	if m != nil {
		m.RelayObservers.Set(float64(n))
	}
}

// SetAgentConnected flips the agent stream gauge.
func (m *Metrics) SetAgentConnected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.RelayAgentState.Set(1)
		return
	}
	m.RelayAgentState.Set(0)
}
