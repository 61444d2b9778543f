package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// System metrics
	SystemMemoryUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "system_memory_bytes",
		Help: "Current system memory usage",
	})

	SystemGoroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "system_goroutines",
		Help: "Number of goroutines",
	})

	// Pipeline metrics
	PipelineProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_processing_duration_seconds",
			Help: "Time spent running dependency node generation per document",
		},
		[]string{"status"},
	)

	DocumentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_documents_processed_total",
			Help: "Total number of documents processed",
		},
		[]string{"status"},
	)

	DocumentProcessingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_processing_errors_total",
			Help: "Total number of document processing errors",
		},
		[]string{"processor", "error_type"},
	)

	// Dependency node metrics
	DependencyNodesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dependency_nodes_created_total",
		Help: "Dependency nodes materialized in node tables",
	})

	DependencyNodesEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dependency_nodes_emitted_total",
			Help: "Dependency node emission outcomes",
		},
		[]string{"outcome"},
	)

	MalformedEdges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dependency_malformed_edges_total",
		Help: "Dependency edges skipped for lacking a resolvable target",
	})
)

// Emission outcomes
const (
	OutcomeEmitted    = "emitted"
	OutcomeRejected   = "rejected"
	OutcomeUnresolved = "unresolved"
)

// UpdateSystemMetrics updates system-level metrics
func UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	SystemMemoryUsage.Set(float64(m.Alloc))
	SystemGoroutines.Set(float64(runtime.NumGoroutine()))
}
