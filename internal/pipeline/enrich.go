package pipeline

import (
	"math"
	"time"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/domain/entity"
)

// Usage profile labels: rider category crossed with the duration tiers that
// mirror the overage-fee breakpoints.
const (
	UsageTypicalMember   = "Typical Member"
	UsageExtendedMember  = "Extended Member"
	UsageShortCasual     = "Short Casual"
	UsageStandardCasual  = "Standard Casual"
	UsageHighUsageCasual = "High Usage Casual"
)

// Time segment labels derived from hour-of-day.
const (
	SegmentMorningCommute = "Morning Commute"
	SegmentMidday         = "Midday"
	SegmentEveningCommute = "Evening Commute"
	SegmentEveningLeisure = "Evening Leisure"
	SegmentLateNight      = "Late Night/Early Morning"
)

// EnrichTrips joins cleaned trips with the weather dimension (by calendar date)
// and the station dimension (by id, separately for start and end), then
// computes per-trip revenue and categorical labels. Joins are left-outer: an
// unmatched weather or station row leaves the enrichment fields nil and keeps
// the trip.
func EnrichTrips(trips []entity.Trip, stations []entity.Station, weather []entity.WeatherDay, pricing config.PricingConfig) []entity.EnrichedTrip {
	weatherByDate := make(map[time.Time]*entity.WeatherDay, len(weather))
	for i := range weather {
		w := &weather[i]
		weatherByDate[dateKey(w.Date)] = w
	}
	stationByID := make(map[string]*entity.Station, len(stations))
	for i := range stations {
		stationByID[stations[i].StationID] = &stations[i]
	}

	out := make([]entity.EnrichedTrip, 0, len(trips))
	for i := range trips {
		t := trips[i]
		e := entity.EnrichedTrip{Trip: t}

		if w, ok := weatherByDate[dateKey(t.RideDate)]; ok {
			e.WeatherSuitability = ptr(w.Suitability)
			e.TemperatureCategory = ptr(w.TemperatureCategory)
			e.PrecipitationCategory = ptr(w.PrecipitationCategory)
			e.TemperatureMean = ptr(w.TemperatureMean)
			e.PrecipitationSum = ptr(w.PrecipitationSum)
			e.WindSpeedMax = ptr(w.WindSpeedMax)
		}
		if s, ok := stationByID[t.StartStationID]; ok {
			e.StartAreaType = ptr(s.AreaType)
		}
		if s, ok := stationByID[t.EndStationID]; ok {
			e.EndAreaType = ptr(s.AreaType)
		}

		e.OverageFee = OverageFee(t.RiderCategory, t.DurationMinutes, pricing)
		if t.DurationMinutes > pricing.LostStolenMinutes {
			e.LostStolenFee = pricing.LostStolenFee
		}
		if t.RiderCategory == entity.RiderCasual {
			e.BaseRevenue = pricing.DayPassPrice
		}
		e.TotalRevenue = e.BaseRevenue + e.OverageFee + e.LostStolenFee
		e.SalesTax = e.TotalRevenue * pricing.SalesTaxRate
		e.TotalWithTax = e.TotalRevenue * (1 + pricing.SalesTaxRate)

		e.UsageProfile = UsageProfileOf(t.RiderCategory, t.DurationMinutes, pricing)
		e.TimeSegment = TimeSegmentOf(t.HourOfDay)

		out = append(out, e)
	}
	return out
}

// OverageFee charges every started minute beyond the rider category's included
// minutes at the configured per-minute rate. Members get the member allowance,
// casual riders the day-pass allowance.
func OverageFee(riderCategory string, durationMinutes float64, pricing config.PricingConfig) float64 {
	included := pricing.MemberIncludedMinutes
	if riderCategory == entity.RiderCasual {
		included = pricing.CasualIncludedMinutes
	}
	over := math.Ceil(durationMinutes - included)
	if over < 0 {
		over = 0
	}
	return over * pricing.OverageRatePerMinute
}

// UsageProfileOf derives the five-way usage label from rider category and the
// duration tiers shared with the overage-fee breakpoints.
func UsageProfileOf(riderCategory string, durationMinutes float64, pricing config.PricingConfig) string {
	if riderCategory == entity.RiderMember {
		if durationMinutes > pricing.MemberIncludedMinutes {
			return UsageExtendedMember
		}
		return UsageTypicalMember
	}
	switch {
	case durationMinutes > pricing.CasualIncludedMinutes:
		return UsageHighUsageCasual
	case durationMinutes > pricing.MemberIncludedMinutes:
		return UsageStandardCasual
	default:
		return UsageShortCasual
	}
}

// TimeSegmentOf maps an hour of day (0..23) to its time segment.
func TimeSegmentOf(hour int) string {
	switch {
	case hour >= 6 && hour <= 9:
		return SegmentMorningCommute
	case hour >= 10 && hour <= 15:
		return SegmentMidday
	case hour >= 16 && hour <= 19:
		return SegmentEveningCommute
	case hour >= 20 && hour <= 23:
		return SegmentEveningLeisure
	default:
		return SegmentLateNight
	}
}

func dateKey(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}
