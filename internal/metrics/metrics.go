package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the broadcast counters. Create it once per registry.
type Metrics struct {
	Messages          *prometheus.CounterVec
	Runs              *prometheus.CounterVec
	OutcomeLogFailure prometheus.Counter
	Duration          *prometheus.HistogramVec
}

// New registers the broadcast metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Messages: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campaign",
				Subsystem: "broadcast",
				Name:      "messages_total",
				Help:      "Per-recipient send attempts by channel and status",
			},
			[]string{"channel", "status"},
		),
		Runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campaign",
				Subsystem: "broadcast",
				Name:      "runs_total",
				Help:      "Broadcast invocations by channel and result",
			},
			[]string{"channel", "result"},
		),
		OutcomeLogFailure: f.NewCounter(prometheus.CounterOpts{
			Namespace: "campaign",
			Name:      "outcome_log_failures_total",
			Help:      "Outcome records that could not be written",
		}),
		Duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "campaign",
				Subsystem: "broadcast",
				Name:      "duration_seconds",
				Help:      "Wall time of a whole broadcast",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"channel"},
		),
	}
}

// Nop returns metrics bound to a private registry, for tests and tools.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
