package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Classification metrics
	ClassificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_classifications_total",
			Help: "Total number of classified workout records",
		},
		[]string{"method", "label"},
	)

	LookupMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cadence_cluster_lookup_misses_total",
			Help: "Cluster ids produced by the model but absent from its label map; indicates a persistence defect",
		},
	)

	OutliersFlagged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cadence_outliers_flagged_total",
			Help: "Records rejected by feature validation and routed to manual review",
		},
	)

	// Model lifecycle metrics
	TrainingRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_training_runs_total",
			Help: "Total number of training runs",
		},
		[]string{"status"}, // status: success|insufficient_data|error
	)

	ModelLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cadence_model_loaded",
			Help: "1 when a trained model is current, 0 when serving fallback only",
		},
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cadence_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)
)

// Register registers all collectors with the default registry
func Register() {
	prometheus.MustRegister(
		ClassificationsTotal,
		LookupMisses,
		OutliersFlagged,
		TrainingRuns,
		ModelLoaded,
		WorkerExecutions,
		WorkerDuration,
	)
}

// Handler returns the HTTP handler for the /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
