package export

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/domain/entity"
	"github.com/velotrend/velotrend/internal/storage"
)

func newTestExporter(t *testing.T) (*Exporter, storage.Connection) {
	t.Helper()
	conn, err := storage.NewLocalConnection(storage.Settings{BaseDir: t.TempDir()}, "exports")
	require.NoError(t, err)

	e := NewExporter(conn, config.ExportConfig{
		Bucket:        "marts",
		OutputBaseDir: "velotrend",
		Compression:   "snappy",
	})
	e.now = func() time.Time { return time.Date(2024, 6, 15, 12, 30, 45, 0, time.UTC) }
	return e, conn
}

func TestExportMarts(t *testing.T) {
	e, conn := newTestExporter(t)
	ctx := context.Background()

	summaries := []entity.BehaviorSummary{
		{PeriodType: "daily", PeriodLabel: "All Days", DaysObserved: 30, AvgDailyTrips: 120.5,
			ConversionAssessment: "Strong", RecommendedStrategy: "Promote day-pass to annual upgrade offers"},
	}
	rankings := []entity.StationRanking{
		{Rank: 1, StationID: "S1", StationName: "First", ConversionPotentialScore: 88.5,
			ConversionPriority: "Very High", TotalTrips: 5000, CasualTrips: 3000, HighUsageCasualTrips: 400},
	}

	require.NoError(t, e.ExportMarts(ctx, summaries, rankings))

	var objects []string
	require.NoError(t, conn.ListObjects(ctx, "marts", "velotrend/", func(name string) error {
		objects = append(objects, name)
		return nil
	}))
	require.Len(t, objects, 2)

	var summaryObject string
	for _, name := range objects {
		assert.Contains(t, name, "dt=2024-06-15/")
		assert.True(t, strings.HasSuffix(name, "_123045.parquet"), name)
		if strings.Contains(name, "marts_behavior_summary") {
			summaryObject = name
		}
	}
	require.NotEmpty(t, summaryObject)

	// The uploaded object is a non-trivial parquet file.
	r, err := conn.Download(ctx, "marts", summaryObject)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Greater(t, len(data), 4)
	assert.Equal(t, "PAR1", string(data[:4]))
}

func TestExportMarts_EmptyTablesSkipped(t *testing.T) {
	e, conn := newTestExporter(t)
	ctx := context.Background()

	require.NoError(t, e.ExportMarts(ctx, nil, nil))

	require.NoError(t, conn.ListObjects(ctx, "marts", "", func(name string) error {
		t.Fatalf("unexpected object %s", name)
		return nil
	}))
}

func TestCompressionCodec(t *testing.T) {
	codec := func(name string) string {
		e := &Exporter{cfg: config.ExportConfig{Compression: name}}
		return e.compressionCodec().String()
	}
	assert.Equal(t, "SNAPPY", codec("snappy"))
	assert.Equal(t, "SNAPPY", codec(""))
	assert.Equal(t, "GZIP", codec("GZIP"))
	assert.Equal(t, "UNCOMPRESSED", codec("none"))
}
