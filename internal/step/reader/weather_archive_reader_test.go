package reader_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/step/reader"
	"github.com/velotrend/velotrend/internal/support/exception"
)

const archiveResponse = `{
  "latitude": 41.85,
  "longitude": -87.65,
  "daily": {
    "time": ["2024-06-01", "2024-06-02"],
    "temperature_2m_max": [28.1, 30.2],
    "temperature_2m_min": [18.0, 19.5],
    "temperature_2m_mean": [22.5, null],
    "precipitation_sum": [0.0, 4.2],
    "wind_speed_10m_max": [12.0, 22.5]
  }
}`

func newArchiveReader(endpoint string) *reader.WeatherArchiveReader {
	return reader.NewWeatherArchiveReader(config.WeatherSourceConfig{
		APIEndpoint: endpoint,
		Latitude:    41.85,
		Longitude:   -87.65,
		Timezone:    "America/Chicago",
		StartDate:   "2024-06-01",
		EndDate:     "2024-06-02",
	})
}

func TestWeatherArchiveReader_Read(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/archive", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(archiveResponse))
	}))
	defer srv.Close()

	days, err := newArchiveReader(srv.URL).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, []string{"2024-06-01"}, gotQuery["start_date"])
	assert.Equal(t, []string{"America/Chicago"}, gotQuery["timezone"])
	assert.NotContains(t, gotQuery, "apikey")

	first := days[0]
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), first.Date)
	assert.InDelta(t, 41.85, first.Latitude, 1e-9)
	require.NotNil(t, first.TemperatureMean)
	assert.InDelta(t, 22.5, *first.TemperatureMean, 1e-9)
	require.NotNil(t, first.PrecipitationSum)
	assert.Zero(t, *first.PrecipitationSum)
	// Metrics absent from the response stay nil.
	assert.Nil(t, first.SnowfallSum)

	// A null cell stays nil for the cleaning stage to filter.
	assert.Nil(t, days[1].TemperatureMean)
	require.NotNil(t, days[1].TemperatureMax)
}

func TestWeatherArchiveReader_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newArchiveReader(srv.URL).Read(context.Background())
	require.Error(t, err)
	assert.True(t, exception.IsTemporary(err))
}

func TestWeatherArchiveReader_ClientErrorIsNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad date range", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newArchiveReader(srv.URL).Read(context.Background())
	require.Error(t, err)
	assert.False(t, exception.IsTemporary(err))
}

func TestWeatherArchiveReader_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := newArchiveReader(srv.URL).Read(context.Background())
	require.Error(t, err)
	assert.True(t, exception.IsSchemaViolation(err))
}

func TestWeatherArchiveReader_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newArchiveReader(srv.URL).Read(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
