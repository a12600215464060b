package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "carefinder",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of each query pipeline stage in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"stage"},
	)

	PipelineStageErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carefinder",
			Name:      "pipeline_stage_errors_total",
			Help:      "Stage failures recovered by fallback values",
		},
		[]string{"stage"},
	)

	PipelineResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "carefinder",
			Name:      "pipeline_results",
			Help:      "Number of records returned per query",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50, 100},
		},
	)

	RetrievalCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "carefinder",
			Name:      "retrieval_vector_candidates",
			Help:      "Number of vector candidates per retrieval",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 200},
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineStageDuration)
	prometheus.MustRegister(PipelineStageErrorsTotal)
	prometheus.MustRegister(PipelineResults)
	prometheus.MustRegister(RetrievalCandidates)
	pipelineMetricsRegistered = true
}
