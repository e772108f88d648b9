package pipeline

import (
	"sort"

	"github.com/velotrend/velotrend/internal/domain/entity"
)

// Period types of the behavior summary mart.
const (
	PeriodDaily   = "daily"
	PeriodWeekend = "weekend"
	PeriodWeekday = "weekday"
	PeriodSeason  = "season"
)

// Conversion assessment labels bucketed from the average casual high-usage
// percentage.
const (
	AssessmentMinimal     = "Minimal"
	AssessmentEmerging    = "Emerging"
	AssessmentStrong      = "Strong"
	AssessmentExceptional = "Exceptional"
)

// Recommended strategy labels combining high-usage and commute signals.
const (
	StrategyCommuterTrials  = "Target commuting casuals with membership trials"
	StrategyDayPassUpgrade  = "Promote day-pass to annual upgrade offers"
	StrategyCommuteSavings  = "Advertise commute savings of membership"
	StrategyLeisureCampaign = "Grow casual ridership with leisure campaigns"
)

// Strategy decision thresholds.
const (
	strategyHighUsagePct = 15.0
	strategyCommutePct   = 25.0
)

// SummarizeBehavior reshapes the daily behavior table into period-averaged
// rows (all days, weekend, weekday, one per observed season) carrying the
// qualitative conversion assessment and recommended strategy labels. This is a
// pure read/reshape step: only threshold bucketing, no new business logic.
func SummarizeBehavior(daily []entity.DailyBehavior) []entity.BehaviorSummary {
	if len(daily) == 0 {
		return nil
	}

	out := make([]entity.BehaviorSummary, 0, 8)
	out = append(out, summarizePeriod(PeriodDaily, "All Days", daily))

	var weekend, weekday []entity.DailyBehavior
	for _, d := range daily {
		if d.IsWeekend {
			weekend = append(weekend, d)
		} else {
			weekday = append(weekday, d)
		}
	}
	if len(weekend) > 0 {
		out = append(out, summarizePeriod(PeriodWeekend, "Weekend", weekend))
	}
	if len(weekday) > 0 {
		out = append(out, summarizePeriod(PeriodWeekday, "Weekday", weekday))
	}

	bySeason := make(map[string][]entity.DailyBehavior)
	for _, d := range daily {
		bySeason[d.Season] = append(bySeason[d.Season], d)
	}
	for _, season := range []string{SeasonWinter, SeasonSpring, SeasonSummer, SeasonFall} {
		if rows := bySeason[season]; len(rows) > 0 {
			out = append(out, summarizePeriod(PeriodSeason, season, rows))
		}
	}
	return out
}

func summarizePeriod(periodType, label string, rows []entity.DailyBehavior) entity.BehaviorSummary {
	var trips, member, casual, revenue, highUsage, memberCommute, casualCommute float64
	for _, d := range rows {
		trips += float64(d.TotalDailyTrips)
		member += float64(d.MemberTrips)
		casual += float64(d.CasualTrips)
		revenue += d.MemberRevenue + d.CasualRevenue
		highUsage += d.CasualHighUsagePct
		memberCommute += d.MemberCommutePct
		casualCommute += d.CasualCommutePct
	}
	n := float64(len(rows))

	s := entity.BehaviorSummary{
		PeriodType:            periodType,
		PeriodLabel:           label,
		DaysObserved:          int32(len(rows)),
		AvgDailyTrips:         trips / n,
		AvgMemberTrips:        member / n,
		AvgCasualTrips:        casual / n,
		AvgDailyRevenue:       revenue / n,
		AvgCasualHighUsagePct: highUsage / n,
		AvgMemberCommutePct:   memberCommute / n,
		AvgCasualCommutePct:   casualCommute / n,
	}
	s.ConversionAssessment = ConversionAssessmentOf(s.AvgCasualHighUsagePct)
	s.RecommendedStrategy = RecommendedStrategyOf(s.AvgCasualHighUsagePct, s.AvgCasualCommutePct)
	return s
}

// ConversionAssessmentOf buckets the average casual high-usage percentage into
// the four-way qualitative assessment.
func ConversionAssessmentOf(avgHighUsagePct float64) string {
	switch {
	case avgHighUsagePct < 5:
		return AssessmentMinimal
	case avgHighUsagePct < 15:
		return AssessmentEmerging
	case avgHighUsagePct < 30:
		return AssessmentStrong
	default:
		return AssessmentExceptional
	}
}

// RecommendedStrategyOf derives the strategy label from the high-usage and
// casual commute percentages.
func RecommendedStrategyOf(highUsagePct, casualCommutePct float64) string {
	highUsage := highUsagePct >= strategyHighUsagePct
	commuting := casualCommutePct >= strategyCommutePct
	switch {
	case highUsage && commuting:
		return StrategyCommuterTrials
	case highUsage:
		return StrategyDayPassUpgrade
	case commuting:
		return StrategyCommuteSavings
	default:
		return StrategyLeisureCampaign
	}
}

// RankStations returns the top-N stations by conversion-potential score,
// 1-based rank, ties broken by station id for deterministic output.
func RankStations(perf []entity.StationPerformance, topN int) []entity.StationRanking {
	sorted := make([]entity.StationPerformance, len(perf))
	copy(sorted, perf)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ConversionPotentialScore != sorted[j].ConversionPotentialScore {
			return sorted[i].ConversionPotentialScore > sorted[j].ConversionPotentialScore
		}
		return sorted[i].StationID < sorted[j].StationID
	})

	if topN > len(sorted) {
		topN = len(sorted)
	}
	out := make([]entity.StationRanking, 0, topN)
	for i := 0; i < topN; i++ {
		p := sorted[i]
		out = append(out, entity.StationRanking{
			Rank:                     int32(i + 1),
			StationID:                p.StationID,
			StationName:              p.StationName,
			AreaType:                 p.AreaType,
			ConversionPotentialScore: p.ConversionPotentialScore,
			ConversionPriority:       p.ConversionPriority,
			TotalTrips:               int64(p.TotalTrips),
			CasualTrips:              int64(p.CasualTrips),
			HighUsageCasualTrips:     int64(p.HighUsageCasualTrips),
			TotalRevenue:             p.TotalRevenue,
		})
	}
	return out
}
