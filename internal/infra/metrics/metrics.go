package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Statements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "offerdb",
		Subsystem: "db",
		Name:      "statements_total",
		Help:      "SQL statements executed, by verb and result.",
	}, []string{"verb", "result"})

	StatementDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "offerdb",
		Subsystem: "db",
		Name:      "statement_duration_seconds",
		Help:      "SQL statement latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"verb"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "offerdb",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "API requests, by route and status code.",
	}, []string{"route", "code"})
)

// ObserveStatement records one statement. ok=false counts it as an error.
func ObserveStatement(verb string, started time.Time, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	Statements.WithLabelValues(verb, result).Inc()
	StatementDuration.WithLabelValues(verb).Observe(time.Since(started).Seconds())
}
