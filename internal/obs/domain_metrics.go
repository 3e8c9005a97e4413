package obs

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartOpsTotal counts cart store mutations by operation and result.
	CartOpsTotal *prometheus.CounterVec
	// CartItems tracks the current number of line items per active session snapshot.
	CartItems prometheus.Histogram
	// CheckoutGateFailTotal counts checkout gate rejections by gate.
	CheckoutGateFailTotal *prometheus.CounterVec
	// CheckoutSubmitTotal counts checkout submissions by result.
	CheckoutSubmitTotal *prometheus.CounterVec
	// RemoteCallTotal counts collaborator calls by target and result.
	RemoteCallTotal *prometheus.CounterVec
	// RemoteCallLatency records collaborator call latency in milliseconds.
	RemoteCallLatency *prometheus.HistogramVec
	// EventsEmittedTotal counts domain events emitted by topic.
	EventsEmittedTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_ops_total",
			Help:      "Count of cart store operations by outcome.",
		}, []string{"op", "result"})
		CartItems = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cart_line_items",
			Help:      "Distribution of line item counts observed at snapshot time.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		})
		CheckoutGateFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_gate_fail_total",
			Help:      "Count of checkout gate rejections by gate.",
		}, []string{"gate"})
		CheckoutSubmitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_submit_total",
			Help:      "Count of checkout submissions by result.",
		}, []string{"result"})
		RemoteCallTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_call_total",
			Help:      "Count of collaborator calls by target and outcome.",
		}, []string{"target", "result"})
		RemoteCallLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_call_duration_ms",
			Help:      "Latency for collaborator calls in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"target"})
		EventsEmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_emitted_total",
			Help:      "Count of domain events emitted by topic.",
		}, []string{"topic"})

		mustRegisterCollector(reg, CartOpsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartOpsTotal = v
			}
		})
		mustRegisterCollector(reg, CartItems, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				CartItems = v
			}
		})
		mustRegisterCollector(reg, CheckoutGateFailTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutGateFailTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutSubmitTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutSubmitTotal = v
			}
		})
		mustRegisterCollector(reg, RemoteCallTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RemoteCallTotal = v
			}
		})
		mustRegisterCollector(reg, RemoteCallLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				RemoteCallLatency = v
			}
		})
		mustRegisterCollector(reg, EventsEmittedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				EventsEmittedTotal = v
			}
		})
	})
}

// ObserveRemoteCall records outcome and latency for a collaborator call.
func ObserveRemoteCall(target string, start time.Time, err error) {
	if RemoteCallTotal != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		RemoteCallTotal.WithLabelValues(target, result).Inc()
	}
	if RemoteCallLatency != nil {
		RemoteCallLatency.WithLabelValues(target).Observe(DurationMillis(time.Since(start)))
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
