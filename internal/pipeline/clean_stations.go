package pipeline

import (
	"sort"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/domain/entity"
)

// Station capacity category labels, bucketed from the capacity value.
const (
	CapacitySmall  = "Small"
	CapacityMedium = "Medium"
	CapacityLarge  = "Large"
)

type stationObservations struct {
	name   string // first observed, kept canonical
	latSum float64
	lonSum float64
	count  int
}

// DeriveStations builds the canonical silver station table from the endpoint
// observations of all raw trips. Every (id, name, lat, lon) tuple observed as a
// start or end endpoint contributes: the first-observed name wins, coordinates
// are averaged across all observations, and stations whose averaged coordinates
// fall outside the service area are dropped. Capacity uses the configured flat
// default since no authoritative capacity source exists. Output is sorted by
// station id so repeated runs produce identical tables.
func DeriveStations(raw []entity.RawTrip, geo config.GeoConfig) []entity.Station {
	obs := make(map[string]*stationObservations)

	observe := func(id, name string, lat, lon *float64) {
		if id == "" || lat == nil || lon == nil {
			return
		}
		o, ok := obs[id]
		if !ok {
			o = &stationObservations{name: name}
			obs[id] = o
		}
		if o.name == "" {
			o.name = name
		}
		o.latSum += *lat
		o.lonSum += *lon
		o.count++
	}

	for i := range raw {
		r := &raw[i]
		observe(r.StartStationID, r.StartStationName, r.StartLat, r.StartLng)
		observe(r.EndStationID, r.EndStationName, r.EndLat, r.EndLng)
	}

	out := make([]entity.Station, 0, len(obs))
	for id, o := range obs {
		lat := o.latSum / float64(o.count)
		lon := o.lonSum / float64(o.count)
		if !geo.ServiceArea.Contains(lat, lon) {
			continue
		}
		out = append(out, entity.Station{
			StationID:        id,
			StationName:      o.name,
			Latitude:         lat,
			Longitude:        lon,
			Observations:     o.count,
			AreaType:         ClassifyArea(lat, lon, geo),
			Capacity:         geo.DefaultStationCapacity,
			CapacityCategory: CapacityCategoryOf(geo.DefaultStationCapacity),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StationID < out[j].StationID })
	return out
}

// CapacityCategoryOf buckets a dock capacity into a size label.
func CapacityCategoryOf(capacity int) string {
	switch {
	case capacity < 10:
		return CapacitySmall
	case capacity <= 20:
		return CapacityMedium
	default:
		return CapacityLarge
	}
}
