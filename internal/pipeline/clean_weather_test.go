package pipeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/domain/entity"
	"github.com/velotrend/velotrend/internal/pipeline"
)

func validRawWeather(date time.Time) entity.RawWeatherDay {
	return entity.RawWeatherDay{
		Date:             date,
		Latitude:         41.85,
		Longitude:        -87.65,
		TemperatureMax:   fptr(25.0),
		TemperatureMin:   fptr(15.0),
		TemperatureMean:  fptr(20.0),
		PrecipitationSum: fptr(0.0),
		RainSum:          fptr(0.0),
		SnowfallSum:      fptr(0.0),
		WindSpeedMax:     fptr(10.0),
		WindGustsMax:     fptr(18.0),
	}
}

func TestCleanWeather_DerivedFields(t *testing.T) {
	geo := config.NewConfig().VeloTrend.Geo
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	cleaned := pipeline.CleanWeather([]entity.RawWeatherDay{validRawWeather(date)}, geo)
	require.Len(t, cleaned, 1)

	w := cleaned[0]
	assert.InDelta(t, 20.0, w.AverageTemperature, 1e-9)
	assert.InDelta(t, 10.0, w.TemperatureRange, 1e-9)
	assert.Equal(t, pipeline.TempWarm, w.TemperatureCategory)
	assert.Equal(t, pipeline.PrecipNone, w.PrecipitationCategory)
	assert.Equal(t, pipeline.SuitabilityExcellent, w.Suitability)
}

func TestCleanWeather_Validation(t *testing.T) {
	geo := config.NewConfig().VeloTrend.Geo
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	missing := validRawWeather(date)
	missing.TemperatureMean = nil
	assert.Empty(t, pipeline.CleanWeather([]entity.RawWeatherDay{missing}, geo))

	inverted := validRawWeather(date)
	inverted.TemperatureMax = fptr(-5.0)
	inverted.TemperatureMin = fptr(5.0)
	assert.Empty(t, pipeline.CleanWeather([]entity.RawWeatherDay{inverted}, geo))
}

func TestCleanWeather_ClampsNegativeInputs(t *testing.T) {
	geo := config.NewConfig().VeloTrend.Geo
	date := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	raw := validRawWeather(date)
	raw.PrecipitationSum = fptr(-3.0)
	raw.SnowfallSum = fptr(-1.0)
	raw.WindSpeedMax = fptr(-12.0)

	cleaned := pipeline.CleanWeather([]entity.RawWeatherDay{raw}, geo)
	require.Len(t, cleaned, 1)
	// Clamped by substitution, not rejected.
	assert.Zero(t, cleaned[0].PrecipitationSum)
	assert.Zero(t, cleaned[0].SnowfallSum)
	assert.Zero(t, cleaned[0].WindSpeedMax)
}

func TestCleanWeather_OneRowPerDateSorted(t *testing.T) {
	geo := config.NewConfig().VeloTrend.Geo
	d1 := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	dup := validRawWeather(d1)
	dup.TemperatureMean = fptr(99.0)

	cleaned := pipeline.CleanWeather([]entity.RawWeatherDay{validRawWeather(d1), dup, validRawWeather(d2)}, geo)
	require.Len(t, cleaned, 2)
	assert.Equal(t, d2, cleaned[0].Date)
	assert.Equal(t, d1, cleaned[1].Date)
	// First occurrence wins the date.
	assert.InDelta(t, 20.0, cleaned[1].TemperatureMean, 1e-9)
}

func TestTemperatureCategoryOf(t *testing.T) {
	assert.Equal(t, pipeline.TempVeryCold, pipeline.TemperatureCategoryOf(-15))
	assert.Equal(t, pipeline.TempCold, pipeline.TemperatureCategoryOf(-10))
	assert.Equal(t, pipeline.TempCold, pipeline.TemperatureCategoryOf(-0.1))
	assert.Equal(t, pipeline.TempCool, pipeline.TemperatureCategoryOf(0))
	assert.Equal(t, pipeline.TempMild, pipeline.TemperatureCategoryOf(10))
	assert.Equal(t, pipeline.TempWarm, pipeline.TemperatureCategoryOf(20))
	assert.Equal(t, pipeline.TempHot, pipeline.TemperatureCategoryOf(30))
}

func TestPrecipitationCategoryOf(t *testing.T) {
	assert.Equal(t, pipeline.PrecipNone, pipeline.PrecipitationCategoryOf(0))
	assert.Equal(t, pipeline.PrecipLight, pipeline.PrecipitationCategoryOf(5))
	assert.Equal(t, pipeline.PrecipModerate, pipeline.PrecipitationCategoryOf(20))
	assert.Equal(t, pipeline.PrecipHeavy, pipeline.PrecipitationCategoryOf(50))
	assert.Equal(t, pipeline.PrecipExtreme, pipeline.PrecipitationCategoryOf(50.1))
}

func TestSuitabilityOf_WorstOfThree(t *testing.T) {
	// A very cold day is Poor no matter how calm and dry it is.
	assert.Equal(t, pipeline.SuitabilityPoor, pipeline.SuitabilityOf(-15, 0, 5))
	// Heavy rain alone forces Poor.
	assert.Equal(t, pipeline.SuitabilityPoor, pipeline.SuitabilityOf(20, 25, 5))
	// Gale-force wind alone forces Poor.
	assert.Equal(t, pipeline.SuitabilityPoor, pipeline.SuitabilityOf(20, 0, 45))

	assert.Equal(t, pipeline.SuitabilityExcellent, pipeline.SuitabilityOf(20, 0, 10))
	// Light rain drops Excellent to Good.
	assert.Equal(t, pipeline.SuitabilityGood, pipeline.SuitabilityOf(20, 2, 10))
	// Chilly but rideable is Fair at best.
	assert.Equal(t, pipeline.SuitabilityFair, pipeline.SuitabilityOf(0, 0, 10))
}
