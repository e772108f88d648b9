package entity

import "time"

// WeatherDay is one validated daily weather row for the analysis location in
// the silver layer. One row per calendar date; negative precipitation and wind
// inputs are clamped to zero during cleaning, not rejected.
type WeatherDay struct {
	Date      time.Time `gorm:"column:date;primaryKey"`
	Latitude  float64   `gorm:"column:latitude"`
	Longitude float64   `gorm:"column:longitude"`

	TemperatureMax  float64 `gorm:"column:temperature_max"`
	TemperatureMin  float64 `gorm:"column:temperature_min"`
	TemperatureMean float64 `gorm:"column:temperature_mean"`

	ApparentTempMax  *float64 `gorm:"column:apparent_temp_max"`
	ApparentTempMin  *float64 `gorm:"column:apparent_temp_min"`
	ApparentTempMean *float64 `gorm:"column:apparent_temp_mean"`

	PrecipitationSum float64 `gorm:"column:precipitation_sum"`
	RainSum          float64 `gorm:"column:rain_sum"`
	SnowfallSum      float64 `gorm:"column:snowfall_sum"`

	WindSpeedMax          float64  `gorm:"column:wind_speed_max"`
	WindGustsMax          float64  `gorm:"column:wind_gusts_max"`
	WindDirectionDominant *float64 `gorm:"column:wind_direction_dominant"`
	CloudCoverMean        *float64 `gorm:"column:cloud_cover_mean"`

	// Derived fields, computed during cleaning.
	AverageTemperature    float64 `gorm:"column:average_temperature"` // (max+min)/2
	TemperatureRange      float64 `gorm:"column:temperature_range"`
	TemperatureCategory   string  `gorm:"column:temperature_category"`
	PrecipitationCategory string  `gorm:"column:precipitation_category"`
	Suitability           string  `gorm:"column:suitability"`
}

// TableName specifies the warehouse table for WeatherDay.
func (WeatherDay) TableName() string {
	return "silver_weather_daily"
}
