package entity

// Mart entities carry parquet tags in addition to GORM tags so the export step
// can serialize them straight from warehouse queries, the same dual-tag shape
// the warehouse uses everywhere.

// BehaviorSummary is one marts-layer row of period-averaged daily behavior
// with the decision labels the dashboard consumes.
type BehaviorSummary struct {
	PeriodType  string `gorm:"column:period_type;primaryKey" parquet:"name=period_type,type=BYTE_ARRAY,convertedtype=UTF8"`
	PeriodLabel string `gorm:"column:period_label;primaryKey" parquet:"name=period_label,type=BYTE_ARRAY,convertedtype=UTF8"`

	DaysObserved          int32   `gorm:"column:days_observed" parquet:"name=days_observed,type=INT32"`
	AvgDailyTrips         float64 `gorm:"column:avg_daily_trips" parquet:"name=avg_daily_trips,type=DOUBLE"`
	AvgMemberTrips        float64 `gorm:"column:avg_member_trips" parquet:"name=avg_member_trips,type=DOUBLE"`
	AvgCasualTrips        float64 `gorm:"column:avg_casual_trips" parquet:"name=avg_casual_trips,type=DOUBLE"`
	AvgDailyRevenue       float64 `gorm:"column:avg_daily_revenue" parquet:"name=avg_daily_revenue,type=DOUBLE"`
	AvgCasualHighUsagePct float64 `gorm:"column:avg_casual_high_usage_pct" parquet:"name=avg_casual_high_usage_pct,type=DOUBLE"`
	AvgMemberCommutePct   float64 `gorm:"column:avg_member_commute_pct" parquet:"name=avg_member_commute_pct,type=DOUBLE"`
	AvgCasualCommutePct   float64 `gorm:"column:avg_casual_commute_pct" parquet:"name=avg_casual_commute_pct,type=DOUBLE"`

	ConversionAssessment string `gorm:"column:conversion_assessment" parquet:"name=conversion_assessment,type=BYTE_ARRAY,convertedtype=UTF8"`
	RecommendedStrategy  string `gorm:"column:recommended_strategy" parquet:"name=recommended_strategy,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// TableName specifies the warehouse table for BehaviorSummary.
func (BehaviorSummary) TableName() string {
	return "marts_behavior_summary"
}

// StationRanking is one marts-layer row of the top-N station list ranked by
// conversion-potential score.
type StationRanking struct {
	// Persisted as station_rank; "rank" is reserved in some SQL dialects.
	Rank        int32  `gorm:"column:station_rank;primaryKey" parquet:"name=station_rank,type=INT32"`
	StationID   string `gorm:"column:station_id" parquet:"name=station_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	StationName string `gorm:"column:station_name" parquet:"name=station_name,type=BYTE_ARRAY,convertedtype=UTF8"`
	AreaType    string `gorm:"column:area_type" parquet:"name=area_type,type=BYTE_ARRAY,convertedtype=UTF8"`

	ConversionPotentialScore float64 `gorm:"column:conversion_potential_score" parquet:"name=conversion_potential_score,type=DOUBLE"`
	ConversionPriority       string  `gorm:"column:conversion_priority" parquet:"name=conversion_priority,type=BYTE_ARRAY,convertedtype=UTF8"`
	TotalTrips               int64   `gorm:"column:total_trips" parquet:"name=total_trips,type=INT64"`
	CasualTrips              int64   `gorm:"column:casual_trips" parquet:"name=casual_trips,type=INT64"`
	HighUsageCasualTrips     int64   `gorm:"column:high_usage_casual_trips" parquet:"name=high_usage_casual_trips,type=INT64"`
	TotalRevenue             float64 `gorm:"column:total_revenue" parquet:"name=total_revenue,type=DOUBLE"`
}

// TableName specifies the warehouse table for StationRanking.
func (StationRanking) TableName() string {
	return "marts_top_stations"
}
