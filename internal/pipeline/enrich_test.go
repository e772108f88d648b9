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

// cleanedTrip returns a cleaned silver trip for enrichment tests.
func cleanedTrip(id, rider string, durationMinutes float64) entity.Trip {
	started := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	return entity.Trip{
		RideID:          id,
		RideableType:    "classic_bike",
		StartedAt:       started,
		EndedAt:         started.Add(time.Duration(durationMinutes * float64(time.Minute))),
		StartStationID:  "A",
		EndStationID:    "B",
		RiderCategory:   rider,
		DurationMinutes: durationMinutes,
		HourOfDay:       8,
		RideDate:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Season:          pipeline.SeasonSummer,
	}
}

func testDimensions() ([]entity.Station, []entity.WeatherDay) {
	stations := []entity.Station{
		{StationID: "A", StationName: "Start", AreaType: "Downtown"},
		{StationID: "B", StationName: "End", AreaType: "Urban Core"},
	}
	weather := []entity.WeatherDay{{
		Date:                  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		TemperatureMean:       22.0,
		Suitability:           pipeline.SuitabilityExcellent,
		TemperatureCategory:   pipeline.TempWarm,
		PrecipitationCategory: pipeline.PrecipNone,
	}}
	return stations, weather
}

func TestEnrichTrips_Joins(t *testing.T) {
	pricing := config.NewConfig().VeloTrend.Pricing
	stations, weather := testDimensions()

	enriched := pipeline.EnrichTrips([]entity.Trip{cleanedTrip("r1", "member", 20)}, stations, weather, pricing)
	require.Len(t, enriched, 1)

	e := enriched[0]
	require.NotNil(t, e.WeatherSuitability)
	assert.Equal(t, pipeline.SuitabilityExcellent, *e.WeatherSuitability)
	require.NotNil(t, e.TemperatureMean)
	assert.InDelta(t, 22.0, *e.TemperatureMean, 1e-9)
	require.NotNil(t, e.StartAreaType)
	assert.Equal(t, "Downtown", *e.StartAreaType)
	require.NotNil(t, e.EndAreaType)
	assert.Equal(t, "Urban Core", *e.EndAreaType)
}

func TestEnrichTrips_JoinMissKeepsTrip(t *testing.T) {
	pricing := config.NewConfig().VeloTrend.Pricing

	// No dimensions at all: outer-join semantics keep the trip with nil enrichment.
	enriched := pipeline.EnrichTrips([]entity.Trip{cleanedTrip("r1", "casual", 30)}, nil, nil, pricing)
	require.Len(t, enriched, 1)

	e := enriched[0]
	assert.Nil(t, e.WeatherSuitability)
	assert.Nil(t, e.TemperatureMean)
	assert.Nil(t, e.StartAreaType)
	assert.Nil(t, e.EndAreaType)
	// Revenue is still computed.
	assert.InDelta(t, pricing.DayPassPrice, e.BaseRevenue, 1e-9)
}

func TestEnrichTrips_CasualOverageFee(t *testing.T) {
	pricing := config.NewConfig().VeloTrend.Pricing
	stations, weather := testDimensions()

	// 200 minute casual trip: overage on every started minute past 180.
	enriched := pipeline.EnrichTrips([]entity.Trip{cleanedTrip("r1", "casual", 200)}, stations, weather, pricing)
	require.Len(t, enriched, 1)

	e := enriched[0]
	assert.InDelta(t, 20*pricing.OverageRatePerMinute, e.OverageFee, 1e-9)
	assert.Equal(t, pipeline.UsageHighUsageCasual, e.UsageProfile)
	assert.Zero(t, e.LostStolenFee)
	assert.InDelta(t, pricing.DayPassPrice+e.OverageFee, e.TotalRevenue, 1e-9)
	assert.InDelta(t, e.TotalRevenue*pricing.SalesTaxRate, e.SalesTax, 1e-9)
	assert.InDelta(t, e.TotalRevenue*(1+pricing.SalesTaxRate), e.TotalWithTax, 1e-9)
}

func TestEnrichTrips_MemberOverageFee(t *testing.T) {
	pricing := config.NewConfig().VeloTrend.Pricing

	enriched := pipeline.EnrichTrips([]entity.Trip{cleanedTrip("r1", "member", 50.5)}, nil, nil, pricing)
	require.Len(t, enriched, 1)

	e := enriched[0]
	// ceil(50.5 - 45) = 6 started minutes over.
	assert.InDelta(t, 6*pricing.OverageRatePerMinute, e.OverageFee, 1e-9)
	assert.Zero(t, e.BaseRevenue) // membership billed out of band
}

func TestEnrichTrips_LostStolenFee(t *testing.T) {
	pricing := config.NewConfig().VeloTrend.Pricing

	for _, rider := range []string{"member", "casual"} {
		enriched := pipeline.EnrichTrips([]entity.Trip{cleanedTrip("r1", rider, 1500)}, nil, nil, pricing)
		require.Len(t, enriched, 1)
		// Over 24 hours: flat fee applies regardless of rider category.
		assert.InDelta(t, pricing.LostStolenFee, enriched[0].LostStolenFee, 1e-9, "rider %s", rider)
	}

	enriched := pipeline.EnrichTrips([]entity.Trip{cleanedTrip("r1", "member", 1440)}, nil, nil, pricing)
	assert.Zero(t, enriched[0].LostStolenFee)
}

func TestEnrichTrips_RevenueNeverNegative(t *testing.T) {
	pricing := config.NewConfig().VeloTrend.Pricing

	for _, minutes := range []float64{0, 0.5, 1, 44.9, 45, 45.1, 180, 181, 1440, 1441, 3000} {
		for _, rider := range []string{"member", "casual"} {
			enriched := pipeline.EnrichTrips([]entity.Trip{cleanedTrip("r", rider, minutes)}, nil, nil, pricing)
			require.Len(t, enriched, 1)
			e := enriched[0]
			assert.GreaterOrEqual(t, e.OverageFee, 0.0, "%s %v min", rider, minutes)
			assert.GreaterOrEqual(t, e.TotalRevenue, 0.0, "%s %v min", rider, minutes)
			assert.GreaterOrEqual(t, e.TotalWithTax, e.TotalRevenue, "%s %v min", rider, minutes)
		}
	}
}

func TestUsageProfileOf(t *testing.T) {
	pricing := config.NewConfig().VeloTrend.Pricing

	assert.Equal(t, pipeline.UsageTypicalMember, pipeline.UsageProfileOf("member", 30, pricing))
	assert.Equal(t, pipeline.UsageTypicalMember, pipeline.UsageProfileOf("member", 45, pricing))
	assert.Equal(t, pipeline.UsageExtendedMember, pipeline.UsageProfileOf("member", 46, pricing))
	assert.Equal(t, pipeline.UsageShortCasual, pipeline.UsageProfileOf("casual", 45, pricing))
	assert.Equal(t, pipeline.UsageStandardCasual, pipeline.UsageProfileOf("casual", 100, pricing))
	assert.Equal(t, pipeline.UsageHighUsageCasual, pipeline.UsageProfileOf("casual", 181, pricing))
}

func TestTimeSegmentOf(t *testing.T) {
	assert.Equal(t, pipeline.SegmentMorningCommute, pipeline.TimeSegmentOf(6))
	assert.Equal(t, pipeline.SegmentMorningCommute, pipeline.TimeSegmentOf(9))
	assert.Equal(t, pipeline.SegmentMidday, pipeline.TimeSegmentOf(10))
	assert.Equal(t, pipeline.SegmentMidday, pipeline.TimeSegmentOf(15))
	assert.Equal(t, pipeline.SegmentEveningCommute, pipeline.TimeSegmentOf(16))
	assert.Equal(t, pipeline.SegmentEveningCommute, pipeline.TimeSegmentOf(19))
	assert.Equal(t, pipeline.SegmentEveningLeisure, pipeline.TimeSegmentOf(20))
	assert.Equal(t, pipeline.SegmentEveningLeisure, pipeline.TimeSegmentOf(23))
	assert.Equal(t, pipeline.SegmentLateNight, pipeline.TimeSegmentOf(0))
	assert.Equal(t, pipeline.SegmentLateNight, pipeline.TimeSegmentOf(5))
}
