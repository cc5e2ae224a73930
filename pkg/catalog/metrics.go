package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
)

var catalogRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "collabgraph_catalog_requests_total",
		Help: "Requests issued to external catalogs by source, operation and outcome",
	},
	[]string{"source", "op", "status"},
)

func init() {
	prometheus.MustRegister(catalogRequests)
}

// ObserveRequest records one catalog request outcome.
func ObserveRequest(source, op, status string) {
	catalogRequests.WithLabelValues(source, op, status).Inc()
}
