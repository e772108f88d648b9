package reader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/domain/entity"
	"github.com/velotrend/velotrend/internal/support/exception"
	"github.com/velotrend/velotrend/internal/support/logger"
)

const ModuleWeatherArchiveReader = "WeatherArchiveReader"

// dailyMetrics is the metric list requested from the archive API.
const dailyMetrics = "temperature_2m_max,temperature_2m_min,temperature_2m_mean," +
	"apparent_temperature_max,apparent_temperature_min,apparent_temperature_mean," +
	"precipitation_sum,rain_sum,snowfall_sum," +
	"wind_speed_10m_max,wind_gusts_10m_max,wind_direction_10m_dominant,cloud_cover_mean"

// WeatherArchiveReader fetches daily historical weather for the analysis
// location from the Open-Meteo archive API.
type WeatherArchiveReader struct {
	source config.WeatherSourceConfig
	client *http.Client
}

func NewWeatherArchiveReader(source config.WeatherSourceConfig) *WeatherArchiveReader {
	return &WeatherArchiveReader{
		source: source,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Read fetches the configured date range and flattens the columnar response
// into one record per day. Days whose value cells are null stay null; the
// cleaning stage filters them.
func (r *WeatherArchiveReader) Read(ctx context.Context) ([]entity.RawWeatherDay, error) {
	logger.Infof("%s: fetching daily weather %s..%s for (%.4f, %.4f).",
		ModuleWeatherArchiveReader, r.source.StartDate, r.source.EndDate, r.source.Latitude, r.source.Longitude)

	archive, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]entity.RawWeatherDay, 0, len(archive.Daily.Time))
	for i, dateStr := range archive.Daily.Time {
		date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
		if err != nil {
			return nil, exception.NewSchemaViolation(ModuleWeatherArchiveReader,
				fmt.Sprintf("unparsable date '%s' in archive response", dateStr), err)
		}
		out = append(out, entity.RawWeatherDay{
			Date:                  date,
			Latitude:              archive.Latitude,
			Longitude:             archive.Longitude,
			TemperatureMax:        at(archive.Daily.Temperature2MMax, i),
			TemperatureMin:        at(archive.Daily.Temperature2MMin, i),
			TemperatureMean:       at(archive.Daily.Temperature2MMean, i),
			ApparentTempMax:       at(archive.Daily.ApparentTempMax, i),
			ApparentTempMin:       at(archive.Daily.ApparentTempMin, i),
			ApparentTempMean:      at(archive.Daily.ApparentTempMean, i),
			PrecipitationSum:      at(archive.Daily.PrecipitationSum, i),
			RainSum:               at(archive.Daily.RainSum, i),
			SnowfallSum:           at(archive.Daily.SnowfallSum, i),
			WindSpeedMax:          at(archive.Daily.WindSpeed10MMax, i),
			WindGustsMax:          at(archive.Daily.WindGusts10MMax, i),
			WindDirectionDominant: at(archive.Daily.WindDirection10MDom, i),
			CloudCoverMean:        at(archive.Daily.CloudCoverMean, i),
		})
	}
	logger.Infof("%s: fetched %d daily weather records.", ModuleWeatherArchiveReader, len(out))
	return out, nil
}

func (r *WeatherArchiveReader) fetch(ctx context.Context) (*entity.OpenMeteoArchive, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.requestURL(), nil)
	if err != nil {
		return nil, exception.NewPipelineError(ModuleWeatherArchiveReader, "failed to create archive API request", err, false, false)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, exception.NewPipelineError(ModuleWeatherArchiveReader, "archive API call failed", err, false, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		body := strings.TrimSpace(string(bodyBytes))
		msg := fmt.Sprintf("archive API returned status %d: %s", resp.StatusCode, body)
		isRetryable := resp.StatusCode >= 500
		return nil, exception.NewPipelineError(ModuleWeatherArchiveReader, msg, errors.New(body), false, isRetryable)
	}

	var archive entity.OpenMeteoArchive
	if err := json.NewDecoder(resp.Body).Decode(&archive); err != nil {
		return nil, exception.NewSchemaViolation(ModuleWeatherArchiveReader, "failed to decode archive API response", err)
	}
	return &archive, nil
}

func (r *WeatherArchiveReader) requestURL() string {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", r.source.Latitude))
	q.Set("longitude", fmt.Sprintf("%.4f", r.source.Longitude))
	q.Set("start_date", r.source.StartDate)
	q.Set("end_date", r.source.EndDate)
	q.Set("daily", dailyMetrics)
	q.Set("timezone", r.source.Timezone)
	if r.source.APIKey != "" {
		q.Set("apikey", r.source.APIKey)
	}
	return fmt.Sprintf("%s/archive?%s", strings.TrimSuffix(r.source.APIEndpoint, "/"), q.Encode())
}

// at indexes a parallel value column, tolerating short or missing columns.
func at(col []*float64, i int) *float64 {
	if i >= len(col) {
		return nil
	}
	return col[i]
}
