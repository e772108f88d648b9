package entity

import "time"

// StationPerformance is one gold-layer row per station, aggregating all
// enriched trips that start there.
type StationPerformance struct {
	StationID   string `gorm:"column:station_id;primaryKey"`
	StationName string `gorm:"column:station_name"`
	AreaType    string `gorm:"column:area_type"`

	ActiveDays           int     `gorm:"column:active_days"`
	TotalTrips           int     `gorm:"column:total_trips"`
	MemberTrips          int     `gorm:"column:member_trips"`
	CasualTrips          int     `gorm:"column:casual_trips"`
	AvgDurationMinutes   float64 `gorm:"column:avg_duration_minutes"`
	TotalRevenue         float64 `gorm:"column:total_revenue"`
	MorningCommuteTrips  int     `gorm:"column:morning_commute_trips"`
	EveningCommuteTrips  int     `gorm:"column:evening_commute_trips"`
	WeekendTrips         int     `gorm:"column:weekend_trips"`
	RoundTrips           int     `gorm:"column:round_trips"`
	HighUsageCasualTrips int     `gorm:"column:high_usage_casual_trips"`

	AvgDailyTrips            float64 `gorm:"column:avg_daily_trips"`
	ConversionPotentialScore float64 `gorm:"column:conversion_potential_score"` // clamped to [0,100]
	VolumeCategory           string  `gorm:"column:volume_category"`
	ConversionPriority       string  `gorm:"column:conversion_priority"`
}

// TableName specifies the warehouse table for StationPerformance.
func (StationPerformance) TableName() string {
	return "gold_station_performance"
}

// DailyBehavior is one gold-layer row per ride date, pivoting the member and
// casual per-group metrics into wide columns. Ratio fields are nil when either
// side has zero trips; percentage-of-total fields degrade to zero instead so
// downstream sums stay well-defined.
type DailyBehavior struct {
	RideDate  time.Time `gorm:"column:ride_date;primaryKey"`
	Season    string    `gorm:"column:season"`
	IsWeekend bool      `gorm:"column:is_weekend"`

	// Weather context for the date (nil when no weather row joined).
	WeatherSuitability  *string `gorm:"column:weather_suitability"`
	TemperatureCategory *string `gorm:"column:temperature_category"`

	MemberTrips int `gorm:"column:member_trips"`
	CasualTrips int `gorm:"column:casual_trips"`

	MemberAvgDurationMinutes *float64 `gorm:"column:member_avg_duration_minutes"`
	CasualAvgDurationMinutes *float64 `gorm:"column:casual_avg_duration_minutes"`
	MemberAvgDistanceKM      *float64 `gorm:"column:member_avg_distance_km"`
	CasualAvgDistanceKM      *float64 `gorm:"column:casual_avg_distance_km"`

	MemberClassicBikeTrips  int `gorm:"column:member_classic_bike_trips"`
	MemberElectricBikeTrips int `gorm:"column:member_electric_bike_trips"`
	CasualClassicBikeTrips  int `gorm:"column:casual_classic_bike_trips"`
	CasualElectricBikeTrips int `gorm:"column:casual_electric_bike_trips"`

	MemberMorningCommuteTrips int `gorm:"column:member_morning_commute_trips"`
	MemberEveningCommuteTrips int `gorm:"column:member_evening_commute_trips"`
	CasualMorningCommuteTrips int `gorm:"column:casual_morning_commute_trips"`
	CasualEveningCommuteTrips int `gorm:"column:casual_evening_commute_trips"`

	MemberRevenue float64 `gorm:"column:member_revenue"`
	CasualRevenue float64 `gorm:"column:casual_revenue"`

	MemberRoundTrips     int `gorm:"column:member_round_trips"`
	CasualRoundTrips     int `gorm:"column:casual_round_trips"`
	CasualHighUsageTrips int `gorm:"column:casual_high_usage_trips"`

	MemberDowntownTrips int `gorm:"column:member_downtown_trips"`
	CasualDowntownTrips int `gorm:"column:casual_downtown_trips"`

	// Final derived columns.
	TotalDailyTrips             int      `gorm:"column:total_daily_trips"`
	DurationRatioCasualToMember *float64 `gorm:"column:duration_ratio_casual_to_member"`
	DistanceRatioCasualToMember *float64 `gorm:"column:distance_ratio_casual_to_member"`
	CasualHighUsagePct          float64  `gorm:"column:casual_high_usage_pct"`
	MemberCommutePct            float64  `gorm:"column:member_commute_pct"`
	CasualCommutePct            float64  `gorm:"column:casual_commute_pct"`
}

// TableName specifies the warehouse table for DailyBehavior.
func (DailyBehavior) TableName() string {
	return "gold_daily_behavior"
}
