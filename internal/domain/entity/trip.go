package entity

import "time"

// Rider category values produced by the cleaning stage. Rows that normalize to
// anything else are dropped.
const (
	RiderMember = "member"
	RiderCasual = "casual"
)

// Trip is one validated, standardized trip row in the silver layer. Rows are
// materialized once per pipeline run and never updated in place.
type Trip struct {
	RideID           string    `gorm:"column:ride_id;primaryKey"`
	RideableType     string    `gorm:"column:rideable_type"`
	StartedAt        time.Time `gorm:"column:started_at"`
	EndedAt          time.Time `gorm:"column:ended_at"`
	StartStationID   string    `gorm:"column:start_station_id"`
	StartStationName string    `gorm:"column:start_station_name"`
	EndStationID     string    `gorm:"column:end_station_id"`
	EndStationName   string    `gorm:"column:end_station_name"`
	StartLat         float64   `gorm:"column:start_lat"`
	StartLng         float64   `gorm:"column:start_lng"`
	EndLat           float64   `gorm:"column:end_lat"`
	EndLng           float64   `gorm:"column:end_lng"`
	RiderCategory    string    `gorm:"column:rider_category"`

	// Derived fields, computed during cleaning.
	DurationMinutes float64   `gorm:"column:duration_minutes"`
	DayOfWeek       int       `gorm:"column:day_of_week"` // 0=Sunday .. 6=Saturday
	HourOfDay       int       `gorm:"column:hour_of_day"`
	Month           int       `gorm:"column:month"`
	Year            int       `gorm:"column:year"`
	RideDate        time.Time `gorm:"column:ride_date"`
	IsWeekend       bool      `gorm:"column:is_weekend"`
	Season          string    `gorm:"column:season"`
	IsRoundTrip     bool      `gorm:"column:is_round_trip"`
	DistanceKM      float64   `gorm:"column:distance_km"`
}

// TableName specifies the warehouse table for Trip.
func (Trip) TableName() string {
	return "silver_trips"
}
