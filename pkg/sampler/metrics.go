package sampler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Self-instrumentation for the sampling loop, exposed on /prometheus.
var (
	cycleCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kubetrim_sample_cycles_total",
		Help: "Completed sampling cycles.",
	})
	fetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kubetrim_fetch_errors_total",
		Help: "Failed usage fetches by branch.",
	}, []string{"branch"})
	droppedLines = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kubetrim_dropped_lines_total",
		Help: "Usage lines dropped because they did not parse.",
	}, []string{"table"})
	tableRows = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "kubetrim_table_rows",
		Help: "Rows accumulated per sample table.",
	}, []string{"table"})
)
