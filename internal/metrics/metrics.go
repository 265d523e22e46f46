package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bracket collectors. A nil *Metrics records nothing.
type Metrics struct {
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	generated   prometheus.Histogram
	completions prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bracket",
			Name:      "operations_total",
			Help:      "Bracket operations by name and result kind.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bracket",
			Name:      "operation_duration_seconds",
			Help:      "Time spent in bracket operations including the transaction.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		generated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bracket",
			Name:      "generated_matches",
			Help:      "Number of matches created per generated bracket.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bracket",
			Name:      "tournaments_completed_total",
			Help:      "Tournaments that crowned a champion.",
		}),
	}
	reg.MustRegister(m.operations, m.duration, m.generated, m.completions)
	return m
}

// Observe records one operation. result is "ok" or an error kind.
func (m *Metrics) Observe(operation, result string, took time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation).Observe(took.Seconds())
}

func (m *Metrics) BracketGenerated(matches int) {
	if m == nil {
		return
	}
	m.generated.Observe(float64(matches))
}

func (m *Metrics) TournamentCompleted() {
	if m == nil {
		return
	}
	m.completions.Inc()
}
