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

// behaviorTrip builds an enriched trip carrying the fields the daily rollup
// pivots on.
func behaviorTrip(rider string, date time.Time, durationMinutes, distanceKM float64) entity.EnrichedTrip {
	e := entity.EnrichedTrip{Trip: entity.Trip{
		RideID:          rider + date.Format("20060102"),
		RideableType:    pipeline.BikeClassic,
		RiderCategory:   rider,
		DurationMinutes: durationMinutes,
		DistanceKM:      distanceKM,
		RideDate:        date,
		Season:          pipeline.SeasonSummer,
	}}
	e.WeatherSuitability = sptr(pipeline.SuitabilityGood)
	e.TemperatureCategory = sptr(pipeline.TempMild)
	return e
}

func sptr(s string) *string { return &s }

func TestAggregateDailyBehavior_Pivot(t *testing.T) {
	cfg := config.NewConfig().VeloTrend
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	m1 := behaviorTrip("member", day, 10, 2)
	m1.TimeSegment = pipeline.SegmentMorningCommute
	m1.StartAreaType = sptr(cfg.Geo.AreaZones[0].Name)
	m2 := behaviorTrip("member", day, 20, 4)
	m2.RideableType = pipeline.BikeElectric
	m2.IsRoundTrip = true
	m2.TotalRevenue = 1.8
	c1 := behaviorTrip("casual", day, 200, 9) // high-usage casual
	c1.TimeSegment = pipeline.SegmentEveningCommute
	c1.TotalRevenue = 25.0

	out := pipeline.AggregateDailyBehavior([]entity.EnrichedTrip{m1, m2, c1}, cfg.Pricing, cfg.Geo)
	require.Len(t, out, 1)

	row := out[0]
	assert.Equal(t, day, row.RideDate)
	assert.Equal(t, pipeline.SeasonSummer, row.Season)
	require.NotNil(t, row.WeatherSuitability)
	assert.Equal(t, pipeline.SuitabilityGood, *row.WeatherSuitability)

	assert.Equal(t, 2, row.MemberTrips)
	require.NotNil(t, row.MemberAvgDurationMinutes)
	assert.InDelta(t, 15.0, *row.MemberAvgDurationMinutes, 1e-9)
	assert.Equal(t, 1, row.MemberClassicBikeTrips)
	assert.Equal(t, 1, row.MemberElectricBikeTrips)
	assert.Equal(t, 1, row.MemberMorningCommuteTrips)
	assert.Equal(t, 0, row.MemberEveningCommuteTrips)
	assert.InDelta(t, 1.8, row.MemberRevenue, 1e-9)
	assert.Equal(t, 1, row.MemberRoundTrips)
	assert.Equal(t, 1, row.MemberDowntownTrips)

	assert.Equal(t, 1, row.CasualTrips)
	require.NotNil(t, row.CasualAvgDurationMinutes)
	assert.InDelta(t, 200.0, *row.CasualAvgDurationMinutes, 1e-9)
	assert.Equal(t, 1, row.CasualEveningCommuteTrips)
	assert.Equal(t, 1, row.CasualHighUsageTrips)
	assert.InDelta(t, 25.0, row.CasualRevenue, 1e-9)

	assert.Equal(t, 3, row.TotalDailyTrips)
	require.NotNil(t, row.DurationRatioCasualToMember)
	assert.InDelta(t, 200.0/15.0, *row.DurationRatioCasualToMember, 1e-9)
	require.NotNil(t, row.DistanceRatioCasualToMember)
	assert.InDelta(t, 9.0/3.0, *row.DistanceRatioCasualToMember, 1e-9)
	assert.InDelta(t, 100.0, row.CasualHighUsagePct, 1e-9)
	assert.InDelta(t, 50.0, row.MemberCommutePct, 1e-9)
	assert.InDelta(t, 100.0, row.CasualCommutePct, 1e-9)
}

func TestAggregateDailyBehavior_MemberOnlyDate(t *testing.T) {
	cfg := config.NewConfig().VeloTrend
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	out := pipeline.AggregateDailyBehavior([]entity.EnrichedTrip{behaviorTrip("member", day, 12, 3)}, cfg.Pricing, cfg.Geo)
	require.Len(t, out, 1)

	row := out[0]
	assert.Equal(t, 1, row.MemberTrips)
	assert.Equal(t, 0, row.CasualTrips)
	assert.Equal(t, 1, row.TotalDailyTrips)
	// Ratios need both sides; percentages degrade to zero.
	assert.Nil(t, row.DurationRatioCasualToMember)
	assert.Nil(t, row.DistanceRatioCasualToMember)
	assert.Nil(t, row.CasualAvgDurationMinutes)
	assert.Zero(t, row.CasualHighUsagePct)
	assert.Zero(t, row.CasualCommutePct)
}

func TestAggregateDailyBehavior_MissingWeatherAndSorting(t *testing.T) {
	cfg := config.NewConfig().VeloTrend
	day1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	unenriched := behaviorTrip("member", day2, 10, 1)
	unenriched.WeatherSuitability = nil
	unenriched.TemperatureCategory = nil

	out := pipeline.AggregateDailyBehavior([]entity.EnrichedTrip{
		unenriched,
		behaviorTrip("casual", day1, 60, 5),
	}, cfg.Pricing, cfg.Geo)
	require.Len(t, out, 2)

	assert.Equal(t, day1, out[0].RideDate)
	assert.Equal(t, day2, out[1].RideDate)
	assert.Nil(t, out[1].WeatherSuitability)
	assert.Nil(t, out[1].TemperatureCategory)
}
