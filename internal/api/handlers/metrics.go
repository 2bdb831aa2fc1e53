package handlers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	assessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apkrisk",
		Name:      "assessments_total",
		Help:      "Total assessment jobs processed, labelled by outcome (risk level or failed).",
	}, []string{"outcome"})

	assessmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "apkrisk",
		Name:      "assessment_duration_seconds",
		Help:      "End to end assessment pipeline latency.",
		Buckets:   prometheus.DefBuckets,
	})
)

func observeAssessment(outcome string, d time.Duration) {
	assessmentsTotal.WithLabelValues(outcome).Inc()
	assessmentDuration.Observe(d.Seconds())
}
