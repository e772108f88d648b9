package pipeline

import (
	"sort"
	"time"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/domain/entity"
)

// Volume category labels bucketed from average daily trips.
const (
	VolumeLow      = "Low"
	VolumeMedium   = "Medium"
	VolumeHigh     = "High"
	VolumeVeryHigh = "Very High"
)

// Conversion priority labels bucketed from the conversion-potential score.
const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityVeryHigh = "Very High"
)

type stationAccumulator struct {
	name        string
	area        string
	days        map[time.Time]bool
	total       int
	member      int
	casual      int
	durationSum float64
	revenue     float64
	morning     int
	evening     int
	weekend     int
	roundTrips  int
	highUsage   int
}

// AggregateStationPerformance rolls enriched trips into one row per start
// station with trip totals, splits and the bounded [0,100] conversion-potential
// score. Percentage terms with a zero denominator coalesce to zero so stations
// with no casual (or no overall) traffic still score cleanly. Output is sorted
// by station id.
func AggregateStationPerformance(enriched []entity.EnrichedTrip, pricing config.PricingConfig, scoring config.ScoringConfig) []entity.StationPerformance {
	acc := make(map[string]*stationAccumulator)

	for i := range enriched {
		e := &enriched[i]
		a, ok := acc[e.StartStationID]
		if !ok {
			a = &stationAccumulator{name: e.StartStationName, days: make(map[time.Time]bool)}
			if e.StartAreaType != nil {
				a.area = *e.StartAreaType
			}
			acc[e.StartStationID] = a
		}

		a.days[e.RideDate] = true
		a.total++
		switch e.RiderCategory {
		case entity.RiderMember:
			a.member++
		case entity.RiderCasual:
			a.casual++
			if e.DurationMinutes > pricing.CasualIncludedMinutes {
				a.highUsage++
			}
		}
		a.durationSum += e.DurationMinutes
		a.revenue += e.TotalRevenue
		switch e.TimeSegment {
		case SegmentMorningCommute:
			a.morning++
		case SegmentEveningCommute:
			a.evening++
		}
		if e.IsWeekend {
			a.weekend++
		}
		if e.IsRoundTrip {
			a.roundTrips++
		}
	}

	out := make([]entity.StationPerformance, 0, len(acc))
	for id, a := range acc {
		p := entity.StationPerformance{
			StationID:            id,
			StationName:          a.name,
			AreaType:             a.area,
			ActiveDays:           len(a.days),
			TotalTrips:           a.total,
			MemberTrips:          a.member,
			CasualTrips:          a.casual,
			TotalRevenue:         a.revenue,
			MorningCommuteTrips:  a.morning,
			EveningCommuteTrips:  a.evening,
			WeekendTrips:         a.weekend,
			RoundTrips:           a.roundTrips,
			HighUsageCasualTrips: a.highUsage,
		}
		if a.total > 0 {
			p.AvgDurationMinutes = a.durationSum / float64(a.total)
		}
		if p.ActiveDays > 0 {
			p.AvgDailyTrips = float64(a.total) / float64(p.ActiveDays)
		}
		p.ConversionPotentialScore = ConversionScore(p, scoring)
		p.VolumeCategory = VolumeCategoryOf(p.AvgDailyTrips)
		p.ConversionPriority = ConversionPriorityOf(p.ConversionPotentialScore)
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StationID < out[j].StationID })
	return out
}

// ConversionScore computes the weighted conversion-potential heuristic:
// casual volume (normalized by the configured divisor, uncapped before the
// final clamp), the percentage of casual trips that are high-usage, the commute
// percentage (term capped) and the round-trip percentage (term capped). The
// result is clamped into [0, MaxScore] no matter what the intermediate terms
// add up to.
func ConversionScore(p entity.StationPerformance, s config.ScoringConfig) float64 {
	volumeTerm := s.CasualVolumeWeight * (float64(p.CasualTrips) / s.CasualVolumeDivisor)
	highUsageTerm := s.HighUsageWeight * percentOf(p.HighUsageCasualTrips, p.CasualTrips)

	commuteTerm := s.CommuteWeight * percentOf(p.MorningCommuteTrips+p.EveningCommuteTrips, p.TotalTrips)
	if commuteTerm > s.CommuteTermCap {
		commuteTerm = s.CommuteTermCap
	}
	roundTerm := s.RoundTripWeight * percentOf(p.RoundTrips, p.TotalTrips)
	if roundTerm > s.RoundTripTermCap {
		roundTerm = s.RoundTripTermCap
	}

	score := volumeTerm + highUsageTerm + commuteTerm + roundTerm
	if score < 0 {
		score = 0
	}
	if score > s.MaxScore {
		score = s.MaxScore
	}
	return score
}

// percentOf returns part/whole as a percentage, degrading to zero on a zero
// denominator so scores never divide by zero.
func percentOf(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// VolumeCategoryOf buckets average daily trips into a volume label.
func VolumeCategoryOf(avgDailyTrips float64) string {
	switch {
	case avgDailyTrips < 5:
		return VolumeLow
	case avgDailyTrips < 20:
		return VolumeMedium
	case avgDailyTrips < 50:
		return VolumeHigh
	default:
		return VolumeVeryHigh
	}
}

// ConversionPriorityOf buckets a conversion-potential score into a priority label.
func ConversionPriorityOf(score float64) string {
	switch {
	case score < 25:
		return PriorityLow
	case score < 50:
		return PriorityMedium
	case score < 75:
		return PriorityHigh
	default:
		return PriorityVeryHigh
	}
}
