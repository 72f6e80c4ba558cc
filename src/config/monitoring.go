package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the collectors the decision engine reports on.
type Metrics struct {
	Registry *prometheus.Registry

	Decisions  *prometheus.CounterVec
	Outcomes   *prometheus.CounterVec
	RiskScores prometheus.Histogram
}

func NewMetrics() *Metrics {
	metrics := &Metrics{
		Registry: prometheus.NewRegistry(),

		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskgate",
			Name:      "decisions_total",
			Help:      "Strategy recommendations produced, by strategy.",
		}, []string{"strategy"}),

		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskgate",
			Name:      "outcomes_total",
			Help:      "Deployment outcomes recorded, by result.",
		}, []string{"result"}),

		RiskScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "riskgate",
			Name:      "risk_score",
			Help:      "Distribution of blended risk scores.",
			Buckets:   prometheus.LinearBuckets(0.05, 0.05, 19),
		}),
	}

	metrics.Registry.MustRegister(
		metrics.Decisions,
		metrics.Outcomes,
		metrics.RiskScores,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return metrics
}
