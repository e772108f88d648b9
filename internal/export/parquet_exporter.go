// Package export writes the reporting marts as Parquet files to object
// storage, one Hive-style dt= partition per export run.
package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/domain/entity"
	"github.com/velotrend/velotrend/internal/storage"
	"github.com/velotrend/velotrend/internal/support/exception"
	"github.com/velotrend/velotrend/internal/support/logger"
)

const ModuleParquetExporter = "ParquetExporter"

const parquetContentType = "application/x-parquet"

// Exporter writes mart tables as Parquet objects through a storage connection.
type Exporter struct {
	conn storage.Connection
	cfg  config.ExportConfig
	now  func() time.Time
}

func NewExporter(conn storage.Connection, cfg config.ExportConfig) *Exporter {
	return &Exporter{conn: conn, cfg: cfg, now: time.Now}
}

// ExportMarts writes both reporting marts. Each mart is attempted even when
// the other fails; failures are collected and returned together.
func (e *Exporter) ExportMarts(ctx context.Context, summaries []entity.BehaviorSummary, rankings []entity.StationRanking) error {
	var errs *multierror.Error

	if err := exportTable(ctx, e, entity.BehaviorSummary{}.TableName(), summaries); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := exportTable(ctx, e, entity.StationRanking{}.TableName(), rankings); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}

func exportTable[T any](ctx context.Context, e *Exporter, tableName string, rows []T) error {
	if len(rows) == 0 {
		logger.Warnf("%s: no rows to export for '%s', skipping.", ModuleParquetExporter, tableName)
		return nil
	}

	buf, err := writeParquet(rows, e.compressionCodec())
	if err != nil {
		return exception.NewPipelineError(ModuleParquetExporter,
			fmt.Sprintf("failed to encode '%s' as parquet", tableName), err, false, false)
	}

	exportedAt := e.now().UTC()
	objectPath := fmt.Sprintf("%s/%s/dt=%s/%s_%s.parquet",
		strings.TrimSuffix(e.cfg.OutputBaseDir, "/"),
		tableName,
		exportedAt.Format("2006-01-02"),
		tableName,
		exportedAt.Format("150405"))

	if err := e.conn.Upload(ctx, e.cfg.Bucket, objectPath, buf, parquetContentType); err != nil {
		return exception.NewPipelineError(ModuleParquetExporter,
			fmt.Sprintf("failed to upload '%s'", objectPath), err, false, true)
	}
	logger.Infof("%s: exported %d rows of '%s' to '%s' (%d bytes).",
		ModuleParquetExporter, len(rows), tableName, objectPath, buf.Len())
	return nil
}

// writeParquet encodes rows into an in-memory parquet file. WriteStop can
// panic inside the parquet library, so the call is fenced with recover.
func writeParquet[T any](rows []T, codec parquet.CompressionCodec) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, new(T), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = codec

	for i := range rows {
		if err := pw.Write(rows[i]); err != nil {
			return nil, fmt.Errorf("failed to write parquet record %d: %w", i, err)
		}
	}

	var stopErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok {
					stopErr = err
				} else {
					stopErr = fmt.Errorf("panic value: %v", r)
				}
			}
		}()
		stopErr = pw.WriteStop()
	}()
	if stopErr != nil {
		return nil, fmt.Errorf("failed to finalize parquet file: %w", stopErr)
	}
	return buf, nil
}

func (e *Exporter) compressionCodec() parquet.CompressionCodec {
	switch strings.ToLower(e.cfg.Compression) {
	case "gzip":
		return parquet.CompressionCodec_GZIP
	case "none", "uncompressed":
		return parquet.CompressionCodec_UNCOMPRESSED
	default:
		return parquet.CompressionCodec_SNAPPY
	}
}
