package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/emergent-company/typedgraph/pkg/apperror"
)

const outcomeOK = "ok"

var (
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graph_operations_total",
		Help: "Graph operations by name and outcome (ok or an error code)",
	}, []string{"operation", "outcome"})

	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graph_operation_duration_seconds",
		Help:    "Duration of graph operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	BatchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graph_batch_size",
		Help:    "Number of descriptors per batch create",
		Buckets: []float64{1, 10, 50, 100, 250, 500, 1000},
	}, []string{"operation"})
)

func outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	return apperror.CodeOf(err)
}

// observe records one finished operation.
func observe(op string, start time.Time, err error) {
	OperationsTotal.WithLabelValues(op, outcome(err)).Inc()
	OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
