package entity

import "time"

// EnrichedTrip is one gold-layer trip row: a cleaned Trip joined with its
// WeatherDay (by date) and both endpoint Stations (by id), plus computed
// revenue fields and categorical labels. Joins are left-outer: a miss leaves
// the nil-able enrichment fields unset and keeps the trip.
type EnrichedTrip struct {
	Trip `gorm:"embedded"`

	// Weather enrichment (nil on join miss).
	WeatherSuitability    *string  `gorm:"column:weather_suitability"`
	TemperatureCategory   *string  `gorm:"column:temperature_category"`
	PrecipitationCategory *string  `gorm:"column:precipitation_category"`
	TemperatureMean       *float64 `gorm:"column:temperature_mean"`
	PrecipitationSum      *float64 `gorm:"column:precipitation_sum"`
	WindSpeedMax          *float64 `gorm:"column:wind_speed_max"`

	// Station enrichment (nil on join miss).
	StartAreaType *string `gorm:"column:start_area_type"`
	EndAreaType   *string `gorm:"column:end_area_type"`

	// Revenue fields.
	BaseRevenue   float64 `gorm:"column:base_revenue"`
	OverageFee    float64 `gorm:"column:overage_fee"`
	LostStolenFee float64 `gorm:"column:lost_stolen_fee"`
	TotalRevenue  float64 `gorm:"column:total_revenue"`
	SalesTax      float64 `gorm:"column:sales_tax"`
	TotalWithTax  float64 `gorm:"column:total_with_tax"`

	// Categorical labels.
	UsageProfile string `gorm:"column:usage_profile"`
	TimeSegment  string `gorm:"column:time_segment"`
}

// TableName specifies the warehouse table for EnrichedTrip.
func (EnrichedTrip) TableName() string {
	return "gold_trips_enhanced"
}

// WeatherDate returns the calendar date used for the weather join.
func (t *EnrichedTrip) WeatherDate() time.Time {
	return t.RideDate
}
