// Package app wires the pipeline components together with uber-fx and drives
// a single batch run from startup to shutdown.
package app

import (
	"context"
	"embed"

	"go.uber.org/fx"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/export"
	"github.com/velotrend/velotrend/internal/job"
	"github.com/velotrend/velotrend/internal/metrics"
	"github.com/velotrend/velotrend/internal/migration"
	"github.com/velotrend/velotrend/internal/repository"
	"github.com/velotrend/velotrend/internal/step/reader"
	"github.com/velotrend/velotrend/internal/storage"
	"github.com/velotrend/velotrend/internal/support/logger"
)

// warehouseConnection is the adapters.database entry the pipeline writes to.
const warehouseConnection = "warehouse"

// migrationsPath is where main.go embeds the schema migration files.
const migrationsPath = "resources/migrations"

// RunApplication sets up the fx container and runs the pipeline job once.
// It returns after the job finishes or the application context is cancelled.
func RunApplication(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig, migrationsFS embed.FS) {
	cfg, err := config.LoadConfig(envFilePath, embeddedConfig)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Infof("Log level set to: %s", cfg.VeloTrend.System.Logging.Level)

	app := fx.New(
		fx.Supply(
			cfg,
			fx.Annotate(
				appCtx,
				fx.As(new(context.Context)),
				fx.ResultTags(`name:"appCtx"`),
			),
			fx.Annotate(
				migrationsFS,
				fx.ResultTags(`name:"migrationsFS"`),
			),
		),

		fx.Provide(
			storage.NewProvider,
			fx.Annotate(newWarehouse, fx.ParamTags("", `name:"migrationsFS"`)),
			fx.Annotate(newTripSource, fx.ParamTags(`name:"appCtx"`)),
			newWeatherSource,
			fx.Annotate(newMartExporter, fx.ParamTags(`name:"appCtx"`)),
			fx.Annotate(newRecorder, fx.ParamTags(`name:"appCtx"`)),
			newPipelineJob,
		),

		fx.Invoke(fx.Annotate(startPipeline, fx.ParamTags(
			"",              // lc fx.Lifecycle
			"",              // shutdowner fx.Shutdowner
			"",              // pipelineJob *job.PipelineJob
			"",              // cfg *config.Config
			"",              // warehouse *repository.Warehouse
			"",              // provider *storage.Provider
			"",              // recorder metrics.Recorder
			`name:"appCtx"`, // appCtx context.Context
		))),
	)

	app.Run()

	if app.Err() != nil {
		logger.Fatalf("Application run failed: %v", app.Err())
	}
}

// newWarehouse opens the configured warehouse connection and brings its schema
// up to date before any stage runs.
func newWarehouse(cfg *config.Config, migrationsFS embed.FS) (*repository.Warehouse, error) {
	warehouse, err := repository.Open(cfg, warehouseConnection)
	if err != nil {
		return nil, err
	}
	sqlDB, err := warehouse.DB().DB()
	if err != nil {
		return nil, err
	}
	if err := migration.Up(sqlDB, warehouse.Dialect(), migrationsFS, migrationsPath); err != nil {
		return nil, err
	}
	return warehouse, nil
}

func newTripSource(appCtx context.Context, cfg *config.Config, provider *storage.Provider) (job.TripSource, error) {
	conn, err := provider.GetConnection(appCtx, cfg.VeloTrend.Source.Trips.StorageRef)
	if err != nil {
		return nil, err
	}
	return reader.NewTripCSVReader(conn, cfg.VeloTrend.Source.Trips), nil
}

func newWeatherSource(cfg *config.Config) job.WeatherSource {
	return reader.NewWeatherArchiveReader(cfg.VeloTrend.Source.Weather)
}

// newMartExporter returns nil when export is disabled; the job skips the
// export stage on a nil exporter.
func newMartExporter(appCtx context.Context, cfg *config.Config, provider *storage.Provider) (job.MartExporter, error) {
	if !cfg.VeloTrend.Export.Enabled {
		logger.Infof("Mart export is disabled.")
		return nil, nil
	}
	conn, err := provider.GetConnection(appCtx, cfg.VeloTrend.Export.StorageRef)
	if err != nil {
		return nil, err
	}
	return export.NewExporter(conn, cfg.VeloTrend.Export), nil
}

func newRecorder(appCtx context.Context, cfg *config.Config) (metrics.Recorder, error) {
	return metrics.NewRecorder(appCtx, cfg.VeloTrend.Telemetry.Metrics)
}

func newPipelineJob(
	cfg *config.Config,
	trips job.TripSource,
	weather job.WeatherSource,
	warehouse *repository.Warehouse,
	exporter job.MartExporter,
	recorder metrics.Recorder,
) *job.PipelineJob {
	return job.NewPipelineJob(&cfg.VeloTrend, trips, weather, warehouse, exporter, recorder)
}

// startPipeline registers the lifecycle hook that launches the job on startup
// and tears the adapters down on shutdown.
func startPipeline(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	pipelineJob *job.PipelineJob,
	cfg *config.Config,
	warehouse *repository.Warehouse,
	provider *storage.Provider,
	recorder metrics.Recorder,
	appCtx context.Context,
) {
	var stopTracing func(context.Context) error

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			shutdown, err := metrics.InitTracing(appCtx, cfg.VeloTrend.Telemetry.Tracing)
			if err != nil {
				return err
			}
			stopTracing = shutdown

			go func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Errorf("Panic recovered in pipeline execution: %v", r)
					}
					logger.Infof("Requesting application shutdown after job completion.")
					if err := shutdowner.Shutdown(); err != nil {
						logger.Errorf("Failed to shutdown application: %v", err)
					}
				}()

				jobName := cfg.VeloTrend.Batch.JobName
				logger.Infof("Starting pipeline job '%s'...", jobName)
				if err := pipelineJob.Run(appCtx); err != nil {
					logger.Errorf("Pipeline job '%s' failed: %v", jobName, err)
					return
				}
				logger.Infof("Pipeline job '%s' completed successfully.", jobName)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Infof("Application is shutting down.")
			if err := recorder.Shutdown(ctx); err != nil {
				logger.Errorf("Failed to shutdown metrics recorder: %v", err)
			}
			if stopTracing != nil {
				if err := stopTracing(ctx); err != nil {
					logger.Errorf("Failed to shutdown trace exporter: %v", err)
				}
			}
			if err := warehouse.Close(); err != nil {
				logger.Errorf("Failed to close warehouse connection: %v", err)
			}
			if err := provider.CloseAll(); err != nil {
				logger.Errorf("Failed to close storage connections: %v", err)
			}
			return nil
		},
	})
}
