package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/support/logger"
)

const meterName = "github.com/velotrend/velotrend"

// OTLPRecorder pushes pipeline metrics to an OTLP collector.
type OTLPRecorder struct {
	provider *sdkmetric.MeterProvider

	jobDuration   otelmetric.Float64Histogram
	jobRuns       otelmetric.Int64Counter
	stageDuration otelmetric.Float64Histogram
	stageRows     otelmetric.Int64Counter
}

var _ Recorder = (*OTLPRecorder)(nil)

// NewOTLPRecorder creates a recorder backed by a periodic OTLP exporter. The
// transport is selected by telemetry.metrics.protocol (grpc or http).
func NewOTLPRecorder(ctx context.Context, cfg config.MetricsConfig) (*OTLPRecorder, error) {
	exporter, err := newOTLPMetricExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "velotrend"),
		)),
	)
	meter := provider.Meter(meterName)

	r := &OTLPRecorder{provider: provider}
	if r.jobDuration, err = meter.Float64Histogram("velotrend.job.duration",
		otelmetric.WithUnit("s"), otelmetric.WithDescription("Duration of pipeline job runs.")); err != nil {
		return nil, err
	}
	if r.jobRuns, err = meter.Int64Counter("velotrend.job.runs",
		otelmetric.WithDescription("Total pipeline job runs by final status.")); err != nil {
		return nil, err
	}
	if r.stageDuration, err = meter.Float64Histogram("velotrend.stage.duration",
		otelmetric.WithUnit("s"), otelmetric.WithDescription("Duration of pipeline stages.")); err != nil {
		return nil, err
	}
	if r.stageRows, err = meter.Int64Counter("velotrend.stage.rows",
		otelmetric.WithDescription("Rows handled per stage by disposition.")); err != nil {
		return nil, err
	}

	logger.Infof("Metrics: pushing OTLP metrics via %s to %s.", cfg.Protocol, cfg.Endpoint)
	return r, nil
}

func newOTLPMetricExporter(ctx context.Context, cfg config.MetricsConfig) (sdkmetric.Exporter, error) {
	switch strings.ToLower(cfg.Protocol) {
	case "", "grpc":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)
	case "http":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown OTLP metrics protocol '%s'", cfg.Protocol)
	}
}

func (r *OTLPRecorder) RecordJobEnd(jobName, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("job_name", jobName),
		attribute.String("status", status),
	)
	ctx := context.Background()
	r.jobRuns.Add(ctx, 1, attrs)
	r.jobDuration.Record(ctx, duration.Seconds(), attrs)
}

func (r *OTLPRecorder) RecordStageDuration(stage string, duration time.Duration) {
	r.stageDuration.Record(context.Background(), duration.Seconds(),
		otelmetric.WithAttributes(attribute.String("stage", stage)))
}

func (r *OTLPRecorder) RecordStageRows(stage, disposition string, count int) {
	r.stageRows.Add(context.Background(), int64(count), otelmetric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("disposition", disposition),
	))
}

// Shutdown flushes pending metrics and stops the provider.
func (r *OTLPRecorder) Shutdown(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}
