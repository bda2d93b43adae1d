package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives generation and run level observations.
type Recorder interface {
	ObserveGeneration(engine, status string, elapsed time.Duration, usage TokenUsage)
	ObserveRun(status string, chunks int, elapsed time.Duration)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ObserveGeneration(string, string, time.Duration, TokenUsage) {}

func (Nop) ObserveRun(string, int, time.Duration) {}

// PrometheusRecorder exports summarizer metrics in Prometheus format.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	generationLatency *prometheus.HistogramVec
	generations       *prometheus.CounterVec
	tokens            *prometheus.CounterVec
	runLatency        *prometheus.HistogramVec
	runs              *prometheus.CounterVec
	runChunks         prometheus.Histogram
}

// NewPrometheusRecorder registers the summarizer and runtime collectors on a fresh registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{registry: prometheus.NewRegistry()}

	r.generationLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ytsummarizer",
		Subsystem: "llm",
		Name:      "generation_latency_seconds",
		Help:      "Latency of single generation calls.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"engine", "status"})
	r.generations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ytsummarizer",
		Subsystem: "llm",
		Name:      "generations_total",
		Help:      "Generation calls by engine and status.",
	}, []string{"engine", "status"})
	r.tokens = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ytsummarizer",
		Subsystem: "llm",
		Name:      "tokens_total",
		Help:      "Tokens reported by the backends, by counter name.",
	}, []string{"engine", "counter"})
	r.runLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ytsummarizer",
		Subsystem: "summary",
		Name:      "run_latency_seconds",
		Help:      "Wall clock duration of summarization runs.",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"status"})
	r.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ytsummarizer",
		Subsystem: "summary",
		Name:      "runs_total",
		Help:      "Summarization runs by terminal status.",
	}, []string{"status"})
	r.runChunks = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ytsummarizer",
		Subsystem: "summary",
		Name:      "run_chunks",
		Help:      "Number of chunks per run.",
		Buckets:   prometheus.LinearBuckets(1, 2, 10),
	})

	r.registry.MustRegister(r.generationLatency, r.generations, r.tokens, r.runLatency, r.runs, r.runChunks)
	r.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return r
}

func (r *PrometheusRecorder) ObserveGeneration(engine, status string, elapsed time.Duration, usage TokenUsage) {
	r.generationLatency.WithLabelValues(engine, status).Observe(elapsed.Seconds())
	r.generations.WithLabelValues(engine, status).Inc()
	for name, value := range usage {
		if value > 0 {
			r.tokens.WithLabelValues(engine, name).Add(float64(value))
		}
	}
}

func (r *PrometheusRecorder) ObserveRun(status string, chunks int, elapsed time.Duration) {
	r.runLatency.WithLabelValues(status).Observe(elapsed.Seconds())
	r.runs.WithLabelValues(status).Inc()
	r.runChunks.Observe(float64(chunks))
}

// Handler exposes the registry for scraping.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}
