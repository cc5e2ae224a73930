package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

var cacheLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "collabgraph_cache_lookups_total",
		Help: "Memo cache lookups by namespace and result (hit, backend_hit, miss)",
	},
	[]string{"namespace", "result"},
)

func init() {
	prometheus.MustRegister(cacheLookups)
}
