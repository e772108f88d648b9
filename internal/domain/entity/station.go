package entity

// Station is one canonical station row in the silver layer, derived by grouping
// the endpoint observations of all trips: first-observed name, coordinate
// averages, and a nested-bounding-box area classification.
type Station struct {
	StationID        string  `gorm:"column:station_id;primaryKey"`
	StationName      string  `gorm:"column:station_name"`
	Latitude         float64 `gorm:"column:latitude"`
	Longitude        float64 `gorm:"column:longitude"`
	Observations     int     `gorm:"column:observations"`
	AreaType         string  `gorm:"column:area_type"`
	Capacity         int     `gorm:"column:capacity"`
	CapacityCategory string  `gorm:"column:capacity_category"`
}

// TableName specifies the warehouse table for Station.
func (Station) TableName() string {
	return "silver_stations"
}
