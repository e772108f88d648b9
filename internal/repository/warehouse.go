// Package repository persists the silver, gold and mart tables of the
// warehouse through GORM. Every stage output fully replaces its table so a
// rerun over the same inputs leaves identical contents.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/domain/entity"
	"github.com/velotrend/velotrend/internal/support/exception"
	"github.com/velotrend/velotrend/internal/support/logger"
)

const ModuleWarehouse = "Warehouse"

// PoolSettings holds connection pool tuning for a warehouse connection.
type PoolSettings struct {
	MaxOpenConns           int `yaml:"max_open_conns"`
	MaxIdleConns           int `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"`
}

// DBSettings holds the connection settings of a single named warehouse,
// decoded from the adapters.database section of the application configuration.
type DBSettings struct {
	Type     string       `yaml:"type"`
	Host     string       `yaml:"host"`
	Port     int          `yaml:"port"`
	Database string       `yaml:"database"`
	User     string       `yaml:"user"`
	Password string       `yaml:"password"`
	Sslmode  string       `yaml:"sslmode"`
	Pool     PoolSettings `yaml:"pool"`
}

// Warehouse wraps the analytics database and exposes one replace operation
// per pipeline table plus the mart read queries.
type Warehouse struct {
	db        *gorm.DB
	chunkSize int
	dialect   string
}

// Open resolves the named connection from the configuration and connects.
func Open(cfg *config.Config, name string) (*Warehouse, error) {
	raw, ok := cfg.VeloTrend.Database[name]
	if !ok {
		return nil, fmt.Errorf("database configuration for '%s' not found", name)
	}

	var settings DBSettings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &settings,
		TagName: "yaml",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder for database config '%s': %w", name, err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode database config for '%s': %w", name, err)
	}

	dialector, err := dialectorFor(settings)
	if err != nil {
		return nil, fmt.Errorf("database connection '%s': %w", name, err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, exception.NewPipelineError(ModuleWarehouse,
			fmt.Sprintf("failed to open database connection '%s'", name), err, false, true)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, exception.NewPipelineError(ModuleWarehouse, "failed to access underlying sql.DB", err, false, false)
	}
	if settings.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(settings.Pool.MaxOpenConns)
	}
	if settings.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(settings.Pool.MaxIdleConns)
	}
	if settings.Pool.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(settings.Pool.ConnMaxLifetimeMinutes) * time.Minute)
	}

	logger.Infof("%s: connected to '%s' (%s).", ModuleWarehouse, name, settings.Type)
	w := NewWarehouse(db, cfg.VeloTrend.Batch.ChunkSize)
	w.dialect = settings.Type
	return w, nil
}

// NewWarehouse wraps an existing GORM handle. Used directly in tests.
func NewWarehouse(db *gorm.DB, chunkSize int) *Warehouse {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &Warehouse{db: db, chunkSize: chunkSize}
}

// DB exposes the underlying handle for schema migration.
func (w *Warehouse) DB() *gorm.DB { return w.db }

// Dialect reports the configured database type ("sqlite", "postgres", "mysql").
func (w *Warehouse) Dialect() string { return w.dialect }

// Close closes the underlying connection.
func (w *Warehouse) Close() error {
	sqlDB, err := w.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (w *Warehouse) ReplaceTrips(ctx context.Context, rows []entity.Trip) error {
	return replaceTable(ctx, w, rows)
}

func (w *Warehouse) ReplaceStations(ctx context.Context, rows []entity.Station) error {
	return replaceTable(ctx, w, rows)
}

func (w *Warehouse) ReplaceWeatherDays(ctx context.Context, rows []entity.WeatherDay) error {
	return replaceTable(ctx, w, rows)
}

func (w *Warehouse) ReplaceEnrichedTrips(ctx context.Context, rows []entity.EnrichedTrip) error {
	return replaceTable(ctx, w, rows)
}

func (w *Warehouse) ReplaceStationPerformance(ctx context.Context, rows []entity.StationPerformance) error {
	return replaceTable(ctx, w, rows)
}

func (w *Warehouse) ReplaceDailyBehavior(ctx context.Context, rows []entity.DailyBehavior) error {
	return replaceTable(ctx, w, rows)
}

func (w *Warehouse) ReplaceBehaviorSummaries(ctx context.Context, rows []entity.BehaviorSummary) error {
	return replaceTable(ctx, w, rows)
}

func (w *Warehouse) ReplaceStationRankings(ctx context.Context, rows []entity.StationRanking) error {
	return replaceTable(ctx, w, rows)
}

// BehaviorSummaries reads back the behavior summary mart in storage order.
func (w *Warehouse) BehaviorSummaries(ctx context.Context) ([]entity.BehaviorSummary, error) {
	var rows []entity.BehaviorSummary
	if err := w.db.WithContext(ctx).Order("period_type, period_label").Find(&rows).Error; err != nil {
		return nil, exception.NewPipelineError(ModuleWarehouse, "failed to read behavior summaries", err, false, true)
	}
	return rows, nil
}

// TopStations reads back the station ranking mart ordered by rank.
func (w *Warehouse) TopStations(ctx context.Context) ([]entity.StationRanking, error) {
	var rows []entity.StationRanking
	if err := w.db.WithContext(ctx).Order("station_rank").Find(&rows).Error; err != nil {
		return nil, exception.NewPipelineError(ModuleWarehouse, "failed to read station rankings", err, false, true)
	}
	return rows, nil
}

// replaceTable swaps the full contents of the table backing T inside one
// transaction: delete everything, then bulk insert in chunks.
func replaceTable[T any](ctx context.Context, w *Warehouse, rows []T) error {
	var model T
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model).Error; err != nil {
			return fmt.Errorf("failed to clear table: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, w.chunkSize).Error; err != nil {
			return fmt.Errorf("failed to bulk insert %d rows: %w", len(rows), err)
		}
		return nil
	})
	if err != nil {
		return exception.NewPipelineError(ModuleWarehouse, fmt.Sprintf("table replace failed for %T", model), err, false, true)
	}
	logger.Debugf("%s: replaced table for %T with %d rows.", ModuleWarehouse, model, len(rows))
	return nil
}
