package resilience

import "github.com/prometheus/client_golang/prometheus"

// Breaker telemetry is registered globally: breakers are created once at
// startup, one per upstream, and share the process registry.
var (
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "breaker_state",
			Help: "Breaker position per upstream: 0=closed, 1=open, 2=half-open.",
		},
		[]string{"target"},
	)
	BreakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breaker_transition_total",
			Help: "Breaker state transitions by upstream and edge.",
		},
		[]string{"target", "from", "to"},
	)
	BreakerOpenedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breaker_open_total",
			Help: "Times a breaker tripped open per upstream.",
		},
		[]string{"target"},
	)
)

func init() {
	prometheus.MustRegister(BreakerState, BreakerTransitions, BreakerOpenedTotal)
}
