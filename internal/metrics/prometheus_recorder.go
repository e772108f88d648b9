package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velotrend/velotrend/internal/support/logger"
)

// PrometheusRecorder exposes pipeline metrics on a scrape endpoint.
type PrometheusRecorder struct {
	registry *prometheus.Registry
	server   *http.Server

	jobDurationSeconds   *prometheus.HistogramVec
	jobStatusCounter     *prometheus.CounterVec
	stageDurationSeconds *prometheus.HistogramVec
	stageRowsTotal       *prometheus.CounterVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates the recorder and, when listenAddr is set,
// starts the scrape endpoint in the background.
func NewPrometheusRecorder(listenAddr string) *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		jobDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "velotrend_job_duration_seconds",
			Help:    "Duration of pipeline job runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job_name", "status"}),
		jobStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "velotrend_job_status_total",
			Help: "Total pipeline job runs by final status.",
		}, []string{"job_name", "status"}),
		stageDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "velotrend_stage_duration_seconds",
			Help:    "Duration of pipeline stages.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		stageRowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "velotrend_stage_rows_total",
			Help: "Rows handled per stage by disposition.",
		}, []string{"stage", "disposition"}),
	}
	registry.MustRegister(r.jobDurationSeconds)
	registry.MustRegister(r.jobStatusCounter)
	registry.MustRegister(r.stageDurationSeconds)
	registry.MustRegister(r.stageRowsTotal)

	if listenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		r.server = &http.Server{Addr: listenAddr, Handler: mux}
		go func() {
			logger.Infof("Metrics: serving Prometheus endpoint on %s.", listenAddr)
			if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("Metrics: scrape endpoint failed: %v", err)
			}
		}()
	}
	return r
}

// Registry exposes the underlying registry for tests.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *PrometheusRecorder) RecordJobEnd(jobName, status string, duration time.Duration) {
	r.jobStatusCounter.WithLabelValues(jobName, status).Inc()
	r.jobDurationSeconds.WithLabelValues(jobName, status).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) RecordStageDuration(stage string, duration time.Duration) {
	r.stageDurationSeconds.WithLabelValues(stage).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) RecordStageRows(stage, disposition string, count int) {
	r.stageRowsTotal.WithLabelValues(stage, disposition).Add(float64(count))
}

// Shutdown stops the scrape endpoint.
func (r *PrometheusRecorder) Shutdown(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	return r.server.Shutdown(ctx)
}
