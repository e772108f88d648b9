// Package reader implements the extract side of the pipeline: trip CSV files
// from object storage and daily weather from the Open-Meteo archive API.
package reader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/domain/entity"
	"github.com/velotrend/velotrend/internal/storage"
	"github.com/velotrend/velotrend/internal/support/exception"
	"github.com/velotrend/velotrend/internal/support/logger"
)

const ModuleTripCSVReader = "TripCSVReader"

// tripCSVHeader is the exact column set expected in trip export files. A file
// with a different header is a schema violation and aborts the run.
var tripCSVHeader = []string{
	"ride_id", "rideable_type", "started_at", "ended_at",
	"start_station_name", "start_station_id", "end_station_name", "end_station_id",
	"start_lat", "start_lng", "end_lat", "end_lng", "member_casual",
}

// tripTimeLayouts are the timestamp formats observed across trip exports.
var tripTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05.999",
}

// TripCSVReader streams trip CSV files from a storage connection. Unparsable
// cell values become nil fields on the raw record and are left to the cleaning
// stage; a wrong header is fatal.
type TripCSVReader struct {
	conn   storage.Connection
	source config.TripSourceConfig
}

func NewTripCSVReader(conn storage.Connection, source config.TripSourceConfig) *TripCSVReader {
	return &TripCSVReader{conn: conn, source: source}
}

// Read lists every object under the configured prefix and decodes them in
// listing order.
func (r *TripCSVReader) Read(ctx context.Context) ([]entity.RawTrip, error) {
	var objects []string
	err := r.conn.ListObjects(ctx, r.source.Bucket, r.source.Prefix, func(objectName string) error {
		if strings.HasSuffix(objectName, ".csv") {
			objects = append(objects, objectName)
		}
		return nil
	})
	if err != nil {
		return nil, exception.NewPipelineError(ModuleTripCSVReader, "failed to list trip source objects", err, false, true)
	}
	if len(objects) == 0 {
		logger.Warnf("%s: no trip files found under bucket '%s' prefix '%s'.", ModuleTripCSVReader, r.source.Bucket, r.source.Prefix)
		return nil, nil
	}

	var out []entity.RawTrip
	for _, objectName := range objects {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		trips, err := r.readObject(ctx, objectName)
		if err != nil {
			return nil, err
		}
		logger.Infof("%s: read %d raw trips from '%s'.", ModuleTripCSVReader, len(trips), objectName)
		out = append(out, trips...)
	}
	return out, nil
}

func (r *TripCSVReader) readObject(ctx context.Context, objectName string) ([]entity.RawTrip, error) {
	body, err := r.conn.Download(ctx, r.source.Bucket, objectName)
	if err != nil {
		return nil, exception.NewPipelineError(ModuleTripCSVReader, fmt.Sprintf("failed to download '%s'", objectName), err, false, true)
	}
	defer body.Close()

	cr := csv.NewReader(body)
	cr.FieldsPerRecord = len(tripCSVHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, exception.NewSchemaViolation(ModuleTripCSVReader, fmt.Sprintf("failed to read header of '%s'", objectName), err)
	}
	if err := validateHeader(header); err != nil {
		return nil, exception.NewSchemaViolation(ModuleTripCSVReader, fmt.Sprintf("unexpected header in '%s'", objectName), err)
	}

	var out []entity.RawTrip
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, exception.NewSchemaViolation(ModuleTripCSVReader, fmt.Sprintf("malformed CSV record in '%s'", objectName), err)
		}
		out = append(out, decodeTripRecord(record))
	}
	return out, nil
}

func validateHeader(header []string) error {
	if len(header) != len(tripCSVHeader) {
		return fmt.Errorf("expected %d columns, got %d", len(tripCSVHeader), len(header))
	}
	for i, want := range tripCSVHeader {
		if strings.TrimSpace(header[i]) != want {
			return fmt.Errorf("column %d: expected '%s', got '%s'", i, want, header[i])
		}
	}
	return nil
}

// decodeTripRecord maps one CSV record onto a raw trip. Empty or unparsable
// optional cells become nil, never an error.
func decodeTripRecord(record []string) entity.RawTrip {
	return entity.RawTrip{
		RideID:           strings.TrimSpace(record[0]),
		RideableType:     strings.TrimSpace(record[1]),
		StartedAt:        parseTimeOrNil(record[2]),
		EndedAt:          parseTimeOrNil(record[3]),
		StartStationName: strings.TrimSpace(record[4]),
		StartStationID:   strings.TrimSpace(record[5]),
		EndStationName:   strings.TrimSpace(record[6]),
		EndStationID:     strings.TrimSpace(record[7]),
		StartLat:         parseFloatOrNil(record[8]),
		StartLng:         parseFloatOrNil(record[9]),
		EndLat:           parseFloatOrNil(record[10]),
		EndLng:           parseFloatOrNil(record[11]),
		RiderCategory:    strings.TrimSpace(record[12]),
	}
}

func parseTimeOrNil(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range tripTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

func parseFloatOrNil(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
