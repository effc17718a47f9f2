package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opFetchBooks = "fetch_books"
	opFetchBook  = "fetch_book"
)

// fetchFailures counts failures the Fetch* helpers swallowed.
var fetchFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "booklend",
		Subsystem: "catalog",
		Name:      "fetch_failures_total",
		Help:      "Catalog fetches that degraded to an empty result.",
	},
	[]string{"operation"},
)

func recordFailure(operation string) {
	fetchFailures.WithLabelValues(operation).Inc()
}
