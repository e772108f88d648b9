package entity

import "time"

// RawTrip is one bronze-layer trip record after the typed ingestion boundary.
// Fields that may legitimately be absent in the extract are pointers; the
// cleaning stage decides which absences disqualify the row.
type RawTrip struct {
	RideID           string
	RideableType     string
	StartedAt        *time.Time
	EndedAt          *time.Time
	StartStationID   string
	StartStationName string
	EndStationID     string
	EndStationName   string
	StartLat         *float64
	StartLng         *float64
	EndLat           *float64
	EndLng           *float64
	RiderCategory    string
}

// RawWeatherDay is one bronze-layer daily weather record for the analysis
// location, as returned by the Open-Meteo archive API.
type RawWeatherDay struct {
	Date                  time.Time
	Latitude              float64
	Longitude             float64
	TemperatureMax        *float64
	TemperatureMin        *float64
	TemperatureMean       *float64
	ApparentTempMax       *float64
	ApparentTempMin       *float64
	ApparentTempMean      *float64
	PrecipitationSum      *float64
	RainSum               *float64
	SnowfallSum           *float64
	WindSpeedMax          *float64
	WindGustsMax          *float64
	WindDirectionDominant *float64
	CloudCoverMean        *float64
}

// OpenMeteoDaily mirrors the "daily" block of the Open-Meteo archive response.
// Value slices are parallel to Time; entries may be null.
type OpenMeteoDaily struct {
	Time                  []string   `json:"time"`
	Temperature2MMax      []*float64 `json:"temperature_2m_max"`
	Temperature2MMin      []*float64 `json:"temperature_2m_min"`
	Temperature2MMean     []*float64 `json:"temperature_2m_mean"`
	ApparentTempMax       []*float64 `json:"apparent_temperature_max"`
	ApparentTempMin       []*float64 `json:"apparent_temperature_min"`
	ApparentTempMean      []*float64 `json:"apparent_temperature_mean"`
	PrecipitationSum      []*float64 `json:"precipitation_sum"`
	RainSum               []*float64 `json:"rain_sum"`
	SnowfallSum           []*float64 `json:"snowfall_sum"`
	WindSpeed10MMax       []*float64 `json:"wind_speed_10m_max"`
	WindGusts10MMax       []*float64 `json:"wind_gusts_10m_max"`
	WindDirection10MDom   []*float64 `json:"wind_direction_10m_dominant"`
	CloudCoverMean        []*float64 `json:"cloud_cover_mean"`
}

// OpenMeteoArchive is the raw Open-Meteo archive API response.
type OpenMeteoArchive struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Daily     OpenMeteoDaily `json:"daily"`
}
