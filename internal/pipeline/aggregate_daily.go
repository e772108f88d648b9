package pipeline

import (
	"sort"
	"time"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/domain/entity"
)

// Bike type values recognized for the per-type counts.
const (
	BikeClassic  = "classic_bike"
	BikeElectric = "electric_bike"
)

type behaviorKey struct {
	date        time.Time
	season      string
	weekend     bool
	suitability string
	tempCat     string
}

type behaviorMetrics struct {
	trips       int
	durationSum float64
	distanceSum float64
	classic     int
	electric    int
	morning     int
	evening     int
	revenue     float64
	roundTrips  int
	highUsage   int
	downtown    int
}

// AggregateDailyBehavior rolls enriched trips into one wide row per ride date
// comparing member and casual behavior. Trips are first grouped by (date, rider
// category, season, weekend flag, weather suitability, temperature category);
// the rider dimension is then pivoted into member_*/casual_* columns. Ratio
// columns are nil when either rider side has zero trips; percentage-of-total
// columns degrade to zero instead. Output is sorted by date.
func AggregateDailyBehavior(enriched []entity.EnrichedTrip, pricing config.PricingConfig, geo config.GeoConfig) []entity.DailyBehavior {
	downtownArea := ""
	if len(geo.AreaZones) > 0 {
		downtownArea = geo.AreaZones[0].Name
	}

	groups := make(map[behaviorKey]map[string]*behaviorMetrics)
	for i := range enriched {
		e := &enriched[i]
		key := behaviorKey{
			date:        e.RideDate,
			season:      e.Season,
			weekend:     e.IsWeekend,
			suitability: deref(e.WeatherSuitability),
			tempCat:     deref(e.TemperatureCategory),
		}
		byRider, ok := groups[key]
		if !ok {
			byRider = make(map[string]*behaviorMetrics, 2)
			groups[key] = byRider
		}
		m, ok := byRider[e.RiderCategory]
		if !ok {
			m = &behaviorMetrics{}
			byRider[e.RiderCategory] = m
		}

		m.trips++
		m.durationSum += e.DurationMinutes
		m.distanceSum += e.DistanceKM
		switch e.RideableType {
		case BikeClassic:
			m.classic++
		case BikeElectric:
			m.electric++
		}
		switch e.TimeSegment {
		case SegmentMorningCommute:
			m.morning++
		case SegmentEveningCommute:
			m.evening++
		}
		m.revenue += e.TotalRevenue
		if e.IsRoundTrip {
			m.roundTrips++
		}
		if e.RiderCategory == entity.RiderCasual && e.DurationMinutes > pricing.CasualIncludedMinutes {
			m.highUsage++
		}
		if downtownArea != "" && e.StartAreaType != nil && *e.StartAreaType == downtownArea {
			m.downtown++
		}
	}

	out := make([]entity.DailyBehavior, 0, len(groups))
	for key, byRider := range groups {
		row := entity.DailyBehavior{
			RideDate:  key.date,
			Season:    key.season,
			IsWeekend: key.weekend,
		}
		if key.suitability != "" {
			row.WeatherSuitability = ptr(key.suitability)
		}
		if key.tempCat != "" {
			row.TemperatureCategory = ptr(key.tempCat)
		}

		if m := byRider[entity.RiderMember]; m != nil {
			row.MemberTrips = m.trips
			row.MemberAvgDurationMinutes = safeAvg(m.durationSum, m.trips)
			row.MemberAvgDistanceKM = safeAvg(m.distanceSum, m.trips)
			row.MemberClassicBikeTrips = m.classic
			row.MemberElectricBikeTrips = m.electric
			row.MemberMorningCommuteTrips = m.morning
			row.MemberEveningCommuteTrips = m.evening
			row.MemberRevenue = m.revenue
			row.MemberRoundTrips = m.roundTrips
			row.MemberDowntownTrips = m.downtown
		}
		if m := byRider[entity.RiderCasual]; m != nil {
			row.CasualTrips = m.trips
			row.CasualAvgDurationMinutes = safeAvg(m.durationSum, m.trips)
			row.CasualAvgDistanceKM = safeAvg(m.distanceSum, m.trips)
			row.CasualClassicBikeTrips = m.classic
			row.CasualElectricBikeTrips = m.electric
			row.CasualMorningCommuteTrips = m.morning
			row.CasualEveningCommuteTrips = m.evening
			row.CasualRevenue = m.revenue
			row.CasualRoundTrips = m.roundTrips
			row.CasualHighUsageTrips = m.highUsage
			row.CasualDowntownTrips = m.downtown
		}

		row.TotalDailyTrips = row.MemberTrips + row.CasualTrips
		row.DurationRatioCasualToMember = safeRatio(row.CasualAvgDurationMinutes, row.MemberAvgDurationMinutes)
		row.DistanceRatioCasualToMember = safeRatio(row.CasualAvgDistanceKM, row.MemberAvgDistanceKM)
		row.CasualHighUsagePct = percentOf(row.CasualHighUsageTrips, row.CasualTrips)
		row.MemberCommutePct = percentOf(row.MemberMorningCommuteTrips+row.MemberEveningCommuteTrips, row.MemberTrips)
		row.CasualCommutePct = percentOf(row.CasualMorningCommuteTrips+row.CasualEveningCommuteTrips, row.CasualTrips)

		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].RideDate.Equal(out[j].RideDate) {
			return out[i].RideDate.Before(out[j].RideDate)
		}
		// Distinct weather context on the same date (possible only when trips
		// split across an ingest correction) keeps a stable order.
		return deref(out[i].WeatherSuitability) < deref(out[j].WeatherSuitability)
	})
	return out
}

// safeAvg returns sum/count as a pointer, nil when count is zero.
func safeAvg(sum float64, count int) *float64 {
	if count == 0 {
		return nil
	}
	v := sum / float64(count)
	return &v
}

// safeRatio returns a/b, nil when either side is missing or b is zero.
// Ratios are undefined, never NaN or Inf.
func safeRatio(a, b *float64) *float64 {
	if a == nil || b == nil || *b == 0 {
		return nil
	}
	v := *a / *b
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
