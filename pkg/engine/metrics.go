package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ExpansionTotal counts expansion runs by outcome (complete, canceled, seed_failed)
	ExpansionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collabgraph_expansion_total",
			Help: "Total number of graph expansions by outcome",
		},
		[]string{"outcome"},
	)

	// ExpansionNodes tracks the size of produced graphs
	ExpansionNodes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "collabgraph_expansion_nodes",
			Help:    "Number of nodes in expanded graphs",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// CandidatesTotal counts coauthor candidates by admission decision
	CandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collabgraph_candidates_total",
			Help: "Total number of coauthor candidates considered during expansion",
		},
		[]string{"decision"},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(ExpansionTotal)
	prometheus.MustRegister(ExpansionNodes)
	prometheus.MustRegister(CandidatesTotal)
}
