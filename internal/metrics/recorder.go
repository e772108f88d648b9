// Package metrics records pipeline run metrics. The backend is selected by
// configuration: a Prometheus scrape endpoint, an OTLP push exporter, or a
// no-op recorder.
package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/velotrend/velotrend/internal/config"
)

// Row dispositions recorded per stage.
const (
	DispositionRead     = "read"
	DispositionKept     = "kept"
	DispositionFiltered = "filtered"
	DispositionWritten  = "written"
)

// Recorder records job and stage level pipeline metrics.
type Recorder interface {
	// RecordJobEnd records one finished job run with its final status.
	RecordJobEnd(jobName, status string, duration time.Duration)
	// RecordStageDuration records the wall time of one pipeline stage.
	RecordStageDuration(stage string, duration time.Duration)
	// RecordStageRows records a row count for a stage with its disposition.
	RecordStageRows(stage, disposition string, count int)
	// Shutdown flushes and releases the backend.
	Shutdown(ctx context.Context) error
}

// NewRecorder builds the Recorder selected by telemetry.metrics.exporter.
func NewRecorder(ctx context.Context, cfg config.MetricsConfig) (Recorder, error) {
	switch strings.ToLower(cfg.Exporter) {
	case "prometheus":
		return NewPrometheusRecorder(cfg.ListenAddr), nil
	case "otlp":
		return NewOTLPRecorder(ctx, cfg)
	case "", "noop", "none":
		return NopRecorder{}, nil
	default:
		return nil, fmt.Errorf("unknown metrics exporter '%s'", cfg.Exporter)
	}
}

// NopRecorder discards every metric.
type NopRecorder struct{}

func (NopRecorder) RecordJobEnd(string, string, time.Duration) {}
func (NopRecorder) RecordStageDuration(string, time.Duration)  {}
func (NopRecorder) RecordStageRows(string, string, int)        {}
func (NopRecorder) Shutdown(context.Context) error             { return nil }
