// Package metrics registers the Prometheus collectors exported by the
// server and the CLI.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "countrytable"

// Fetch results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetch_duration_seconds",
			Help:      "Time taken to fetch the country dataset.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"source"},
	)

	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetch_total",
			Help:      "Dataset fetches by source and result.",
		},
		[]string{"source", "result"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "table",
			Name:      "pipeline_duration_seconds",
			Help:      "Time taken to filter, sort and paginate the record set.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"mode"},
	)

	ActiveViews = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "views",
		Name:      "active",
		Help:      "Number of live table views.",
	})

	ViewMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "views",
			Name:      "mutations_total",
			Help:      "View control state changes by operation.",
		},
		[]string{"op"},
	)
)

// ObserveFetch records one completed fetch.
func ObserveFetch(source string, took time.Duration, err error) {
	FetchDuration.WithLabelValues(source).Observe(took.Seconds())
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	FetchTotal.WithLabelValues(source, result).Inc()
}

// TimePipeline starts a timer for one pipeline evaluation. Call the returned
// function when the evaluation is done.
func TimePipeline(mode string) func() time.Duration {
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		PipelineDuration.WithLabelValues(mode).Observe(v)
	}))
	return timer.ObserveDuration
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
