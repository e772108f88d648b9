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

// enrichedAt builds a minimal enriched trip starting at the given station on
// the given date.
func enrichedAt(station, rider string, date time.Time, durationMinutes float64) entity.EnrichedTrip {
	return entity.EnrichedTrip{Trip: entity.Trip{
		RideID:           station + rider + date.Format("20060102"),
		StartStationID:   station,
		StartStationName: "Station " + station,
		RiderCategory:    rider,
		DurationMinutes:  durationMinutes,
		RideDate:         date,
	}}
}

func TestAggregateStationPerformance_Counts(t *testing.T) {
	cfg := config.NewConfig().VeloTrend
	day1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	trips := []entity.EnrichedTrip{
		enrichedAt("A", "member", day1, 10),
		enrichedAt("A", "casual", day1, 30),
		enrichedAt("A", "casual", day2, 200), // high-usage casual
		enrichedAt("B", "member", day1, 20),
	}
	trips[0].IsRoundTrip = true
	trips[0].TimeSegment = pipeline.SegmentMorningCommute
	trips[1].TimeSegment = pipeline.SegmentEveningCommute
	trips[1].IsWeekend = true
	trips[0].TotalRevenue = 2.5
	trips[2].TotalRevenue = 10.0

	out := pipeline.AggregateStationPerformance(trips, cfg.Pricing, cfg.Scoring)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].StationID)
	assert.Equal(t, "B", out[1].StationID)

	a := out[0]
	assert.Equal(t, "Station A", a.StationName)
	assert.Equal(t, 2, a.ActiveDays)
	assert.Equal(t, 3, a.TotalTrips)
	assert.Equal(t, 1, a.MemberTrips)
	assert.Equal(t, 2, a.CasualTrips)
	assert.Equal(t, 1, a.HighUsageCasualTrips)
	assert.Equal(t, 1, a.MorningCommuteTrips)
	assert.Equal(t, 1, a.EveningCommuteTrips)
	assert.Equal(t, 1, a.WeekendTrips)
	assert.Equal(t, 1, a.RoundTrips)
	assert.InDelta(t, 80.0, a.AvgDurationMinutes, 1e-9)
	assert.InDelta(t, 1.5, a.AvgDailyTrips, 1e-9)
	assert.InDelta(t, 12.5, a.TotalRevenue, 1e-9)
}

func TestConversionScore_ZeroCasualStation(t *testing.T) {
	scoring := config.NewConfig().VeloTrend.Scoring

	// All-member station: casual terms degrade to zero instead of dividing by zero.
	p := entity.StationPerformance{
		TotalTrips:          100,
		MemberTrips:         100,
		MorningCommuteTrips: 40,
		EveningCommuteTrips: 40,
		RoundTrips:          10,
	}
	score := pipeline.ConversionScore(p, scoring)
	assert.GreaterOrEqual(t, score, 0.0)
	// Only the commute and round-trip terms contribute.
	assert.InDelta(t, scoring.CommuteWeight*80+scoring.RoundTripWeight*10, score, 1e-9)
}

func TestConversionScore_Clamped(t *testing.T) {
	scoring := config.NewConfig().VeloTrend.Scoring

	// Huge casual volume pushes the uncapped volume term far past the maximum.
	p := entity.StationPerformance{
		TotalTrips:           100000,
		CasualTrips:          100000,
		HighUsageCasualTrips: 100000,
		MorningCommuteTrips:  100000,
		RoundTrips:           100000,
	}
	assert.InDelta(t, scoring.MaxScore, pipeline.ConversionScore(p, scoring), 1e-9)

	assert.Zero(t, pipeline.ConversionScore(entity.StationPerformance{}, scoring))
}

func TestVolumeCategoryOf(t *testing.T) {
	assert.Equal(t, pipeline.VolumeLow, pipeline.VolumeCategoryOf(4.9))
	assert.Equal(t, pipeline.VolumeMedium, pipeline.VolumeCategoryOf(5))
	assert.Equal(t, pipeline.VolumeMedium, pipeline.VolumeCategoryOf(19.9))
	assert.Equal(t, pipeline.VolumeHigh, pipeline.VolumeCategoryOf(20))
	assert.Equal(t, pipeline.VolumeHigh, pipeline.VolumeCategoryOf(49.9))
	assert.Equal(t, pipeline.VolumeVeryHigh, pipeline.VolumeCategoryOf(50))
}

func TestConversionPriorityOf(t *testing.T) {
	assert.Equal(t, pipeline.PriorityLow, pipeline.ConversionPriorityOf(0))
	assert.Equal(t, pipeline.PriorityLow, pipeline.ConversionPriorityOf(24.9))
	assert.Equal(t, pipeline.PriorityMedium, pipeline.ConversionPriorityOf(25))
	assert.Equal(t, pipeline.PriorityHigh, pipeline.ConversionPriorityOf(50))
	assert.Equal(t, pipeline.PriorityVeryHigh, pipeline.ConversionPriorityOf(75))
	assert.Equal(t, pipeline.PriorityVeryHigh, pipeline.ConversionPriorityOf(100))
}
