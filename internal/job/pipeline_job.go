// Package job orchestrates the full pipeline run: extract, clean, persist,
// enrich, aggregate and publish the reporting marts.
package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/domain/entity"
	"github.com/velotrend/velotrend/internal/metrics"
	"github.com/velotrend/velotrend/internal/pipeline"
	"github.com/velotrend/velotrend/internal/support/logger"
)

const ModulePipelineJob = "PipelineJob"

// Job final statuses reported to metrics.
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// TripSource yields raw trip records.
type TripSource interface {
	Read(ctx context.Context) ([]entity.RawTrip, error)
}

// WeatherSource yields raw daily weather records.
type WeatherSource interface {
	Read(ctx context.Context) ([]entity.RawWeatherDay, error)
}

// Warehouse is the persistence surface the job writes each stage output to.
type Warehouse interface {
	ReplaceTrips(ctx context.Context, rows []entity.Trip) error
	ReplaceStations(ctx context.Context, rows []entity.Station) error
	ReplaceWeatherDays(ctx context.Context, rows []entity.WeatherDay) error
	ReplaceEnrichedTrips(ctx context.Context, rows []entity.EnrichedTrip) error
	ReplaceStationPerformance(ctx context.Context, rows []entity.StationPerformance) error
	ReplaceDailyBehavior(ctx context.Context, rows []entity.DailyBehavior) error
	ReplaceBehaviorSummaries(ctx context.Context, rows []entity.BehaviorSummary) error
	ReplaceStationRankings(ctx context.Context, rows []entity.StationRanking) error
}

// MartExporter publishes the reporting marts outside the warehouse.
type MartExporter interface {
	ExportMarts(ctx context.Context, summaries []entity.BehaviorSummary, rankings []entity.StationRanking) error
}

// PipelineJob runs the batch pipeline end to end. Exporter may be nil when
// export is disabled.
type PipelineJob struct {
	cfg       *config.VeloTrendConfig
	trips     TripSource
	weather   WeatherSource
	warehouse Warehouse
	exporter  MartExporter
	recorder  metrics.Recorder
}

func NewPipelineJob(
	cfg *config.VeloTrendConfig,
	trips TripSource,
	weather WeatherSource,
	warehouse Warehouse,
	exporter MartExporter,
	recorder metrics.Recorder,
) *PipelineJob {
	return &PipelineJob{
		cfg:       cfg,
		trips:     trips,
		weather:   weather,
		warehouse: warehouse,
		exporter:  exporter,
		recorder:  recorder,
	}
}

// Run executes the pipeline. Stages run in dependency order; independent work
// inside a stage runs concurrently and failures are collected before the run
// aborts.
func (j *PipelineJob) Run(ctx context.Context) error {
	runID := uuid.New().String()
	jobName := j.cfg.Batch.JobName
	started := time.Now()

	ctx, span := metrics.Tracer().Start(ctx, "pipeline.run")
	span.SetAttributes(
		attribute.String("job.name", jobName),
		attribute.String("run.id", runID),
	)
	defer span.End()

	logger.Infof("%s: run %s starting.", jobName, runID)

	err := j.run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Errorf("%s: run %s failed after %s: %v", jobName, runID, time.Since(started).Round(time.Millisecond), err)
	} else {
		logger.Infof("%s: run %s completed in %s.", jobName, runID, time.Since(started).Round(time.Millisecond))
	}
	j.recorder.RecordJobEnd(jobName, status, time.Since(started))
	return err
}

func (j *PipelineJob) run(ctx context.Context) error {
	// Bronze: extract both sources concurrently.
	var (
		rawTrips   []entity.RawTrip
		rawWeather []entity.RawWeatherDay
	)
	err := j.stage(ctx, "extract", func(ctx context.Context) error {
		var mu sync.Mutex
		var errs *multierror.Error
		var wg sync.WaitGroup

		wg.Add(2)
		go func() {
			defer wg.Done()
			trips, err := j.trips.Read(ctx)
			mu.Lock()
			defer mu.Unlock()
			rawTrips = trips
			errs = multierror.Append(errs, err)
		}()
		go func() {
			defer wg.Done()
			weather, err := j.weather.Read(ctx)
			mu.Lock()
			defer mu.Unlock()
			rawWeather = weather
			errs = multierror.Append(errs, err)
		}()
		wg.Wait()
		return errs.ErrorOrNil()
	})
	if err != nil {
		return err
	}
	j.recorder.RecordStageRows("extract", metrics.DispositionRead, len(rawTrips)+len(rawWeather))

	// Silver: clean each entity and persist.
	var (
		trips    []entity.Trip
		stations []entity.Station
		weather  []entity.WeatherDay
	)
	err = j.stage(ctx, "clean", func(ctx context.Context) error {
		trips = pipeline.CleanTrips(rawTrips, j.cfg.Geo)
		stations = pipeline.DeriveStations(rawTrips, j.cfg.Geo)
		weather = pipeline.CleanWeather(rawWeather, j.cfg.Geo)
		return nil
	})
	if err != nil {
		return err
	}
	j.recorder.RecordStageRows("clean", metrics.DispositionKept, len(trips)+len(stations)+len(weather))
	j.recorder.RecordStageRows("clean", metrics.DispositionFiltered,
		(len(rawTrips)-len(trips))+(len(rawWeather)-len(weather)))

	err = j.stage(ctx, "persist_silver", func(ctx context.Context) error {
		return j.parallel(ctx,
			func(ctx context.Context) error { return j.warehouse.ReplaceTrips(ctx, trips) },
			func(ctx context.Context) error { return j.warehouse.ReplaceStations(ctx, stations) },
			func(ctx context.Context) error { return j.warehouse.ReplaceWeatherDays(ctx, weather) },
		)
	})
	if err != nil {
		return err
	}

	// Gold: enrichment joins plus revenue.
	var enriched []entity.EnrichedTrip
	err = j.stage(ctx, "enrich", func(ctx context.Context) error {
		enriched = pipeline.EnrichTrips(trips, stations, weather, j.cfg.Pricing)
		return j.warehouse.ReplaceEnrichedTrips(ctx, enriched)
	})
	if err != nil {
		return err
	}
	j.recorder.RecordStageRows("enrich", metrics.DispositionWritten, len(enriched))

	// Gold: aggregates are independent of each other.
	var (
		performance []entity.StationPerformance
		daily       []entity.DailyBehavior
	)
	err = j.stage(ctx, "aggregate", func(ctx context.Context) error {
		return j.parallel(ctx,
			func(ctx context.Context) error {
				performance = pipeline.AggregateStationPerformance(enriched, j.cfg.Pricing, j.cfg.Scoring)
				return j.warehouse.ReplaceStationPerformance(ctx, performance)
			},
			func(ctx context.Context) error {
				daily = pipeline.AggregateDailyBehavior(enriched, j.cfg.Pricing, j.cfg.Geo)
				return j.warehouse.ReplaceDailyBehavior(ctx, daily)
			},
		)
	})
	if err != nil {
		return err
	}
	j.recorder.RecordStageRows("aggregate", metrics.DispositionWritten, len(performance)+len(daily))

	// Marts: reshape, persist and optionally export.
	var (
		summaries []entity.BehaviorSummary
		rankings  []entity.StationRanking
	)
	err = j.stage(ctx, "marts", func(ctx context.Context) error {
		summaries = pipeline.SummarizeBehavior(daily)
		rankings = pipeline.RankStations(performance, j.cfg.Reporting.TopStations)
		return j.parallel(ctx,
			func(ctx context.Context) error { return j.warehouse.ReplaceBehaviorSummaries(ctx, summaries) },
			func(ctx context.Context) error { return j.warehouse.ReplaceStationRankings(ctx, rankings) },
		)
	})
	if err != nil {
		return err
	}
	j.recorder.RecordStageRows("marts", metrics.DispositionWritten, len(summaries)+len(rankings))

	if j.exporter != nil && j.cfg.Export.Enabled {
		err = j.stage(ctx, "export", func(ctx context.Context) error {
			return j.exporter.ExportMarts(ctx, summaries, rankings)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// stage runs fn under a span, records its duration and checks for
// cancellation first.
func (j *PipelineJob) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	ctx, span := metrics.Tracer().Start(ctx, "pipeline.stage."+name)
	defer span.End()
	started := time.Now()

	err := fn(ctx)
	j.recorder.RecordStageDuration(name, time.Since(started))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("stage '%s' failed: %w", name, err)
	}
	logger.Debugf("%s: stage '%s' finished in %s.", ModulePipelineJob, name, time.Since(started).Round(time.Millisecond))
	return nil
}

// parallel runs the given functions concurrently and collects their errors.
func (j *PipelineJob) parallel(ctx context.Context, fns ...func(ctx context.Context) error) error {
	var mu sync.Mutex
	var errs *multierror.Error
	var wg sync.WaitGroup

	for _, fn := range fns {
		wg.Add(1)
		go func(fn func(ctx context.Context) error) {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
			}
		}(fn)
	}
	wg.Wait()
	return errs.ErrorOrNil()
}
