package pipeline

import (
	"strings"
	"time"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/domain/entity"
)

// Trip duration bounds applied during cleaning.
const (
	MinTripDuration = 60 * time.Second
	MaxTripDuration = 24 * time.Hour
)

// Season labels derived from the trip month.
const (
	SeasonWinter = "Winter"
	SeasonSpring = "Spring"
	SeasonSummer = "Summer"
	SeasonFall   = "Fall"
)

// CleanTrips produces the validated, standardized silver trip table from raw
// rows. Rows failing any validation predicate are silently excluded (filter
// semantics, not an error channel): required fields present, start before end,
// duration within [1 minute, 24 hours], both endpoints inside the service area
// and a rider category that normalizes to member or casual.
func CleanTrips(raw []entity.RawTrip, geo config.GeoConfig) []entity.Trip {
	out := make([]entity.Trip, 0, len(raw))
	for i := range raw {
		t, ok := cleanTrip(&raw[i], geo)
		if ok {
			out = append(out, t)
		}
	}
	return out
}

func cleanTrip(r *entity.RawTrip, geo config.GeoConfig) (entity.Trip, bool) {
	if r.RideID == "" || r.StartedAt == nil || r.EndedAt == nil ||
		r.StartStationID == "" || r.EndStationID == "" {
		return entity.Trip{}, false
	}
	if r.StartLat == nil || r.StartLng == nil || r.EndLat == nil || r.EndLng == nil {
		return entity.Trip{}, false
	}

	started, ended := *r.StartedAt, *r.EndedAt
	if !ended.After(started) {
		return entity.Trip{}, false
	}
	duration := ended.Sub(started)
	if duration < MinTripDuration || duration > MaxTripDuration {
		return entity.Trip{}, false
	}

	if !geo.ServiceArea.Contains(*r.StartLat, *r.StartLng) ||
		!geo.ServiceArea.Contains(*r.EndLat, *r.EndLng) {
		return entity.Trip{}, false
	}

	rider, ok := NormalizeRiderCategory(r.RiderCategory)
	if !ok {
		return entity.Trip{}, false
	}

	y, m, d := started.Date()
	return entity.Trip{
		RideID:           r.RideID,
		RideableType:     strings.ToLower(strings.TrimSpace(r.RideableType)),
		StartedAt:        started,
		EndedAt:          ended,
		StartStationID:   r.StartStationID,
		StartStationName: r.StartStationName,
		EndStationID:     r.EndStationID,
		EndStationName:   r.EndStationName,
		StartLat:         *r.StartLat,
		StartLng:         *r.StartLng,
		EndLat:           *r.EndLat,
		EndLng:           *r.EndLng,
		RiderCategory:    rider,

		DurationMinutes: duration.Minutes(),
		DayOfWeek:       int(started.Weekday()),
		HourOfDay:       started.Hour(),
		Month:           int(m),
		Year:            y,
		RideDate:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		IsWeekend:       started.Weekday() == time.Saturday || started.Weekday() == time.Sunday,
		Season:          SeasonOf(int(m)),
		IsRoundTrip:     r.StartStationID == r.EndStationID,
		DistanceKM:      GreatCircleDistanceKM(*r.StartLat, *r.StartLng, *r.EndLat, *r.EndLng),
	}, true
}

// NormalizeRiderCategory lowercases and trims the raw rider value and reports
// whether it is one of the two supported categories.
func NormalizeRiderCategory(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case entity.RiderMember:
		return entity.RiderMember, true
	case entity.RiderCasual:
		return entity.RiderCasual, true
	default:
		return "", false
	}
}

// SeasonOf maps a calendar month (1..12) to its season bucket:
// Dec-Feb Winter, Mar-May Spring, Jun-Aug Summer, Sep-Nov Fall.
func SeasonOf(month int) string {
	switch month {
	case 12, 1, 2:
		return SeasonWinter
	case 3, 4, 5:
		return SeasonSpring
	case 6, 7, 8:
		return SeasonSummer
	default:
		return SeasonFall
	}
}
