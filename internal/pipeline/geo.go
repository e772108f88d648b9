// Package pipeline implements the layered transformation stages of the
// VeloTrend warehouse: cleaning (silver), enrichment and aggregation (gold) and
// reporting (marts). Each stage is a pure function from upstream tables to a
// freshly computed table; a stage never mutates its inputs, so re-running any
// stage against the same input snapshot yields identical output.
package pipeline

import (
	"math"

	"github.com/velotrend/velotrend/internal/config"
)

// EarthRadiusKM is the mean Earth radius used for great-circle distances.
const EarthRadiusKM = 6371.0

// GreatCircleDistanceKM returns the great-circle distance in kilometers between
// two latitude/longitude points using the spherical law of cosines. The acos
// argument is clamped to [-1, 1] so floating-point drift near identical points
// cannot produce NaN.
func GreatCircleDistanceKM(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	arg := math.Cos(rlat1)*math.Cos(rlat2)*math.Cos(dlon) + math.Sin(rlat1)*math.Sin(rlat2)
	if arg > 1 {
		arg = 1
	} else if arg < -1 {
		arg = -1
	}
	return EarthRadiusKM * math.Acos(arg)
}

// ClassifyArea returns the area label of a coordinate by nested bounding-box
// membership, checked in configured priority order (innermost first). A point
// outside every zone gets the fallback label.
func ClassifyArea(lat, lon float64, geo config.GeoConfig) string {
	for _, zone := range geo.AreaZones {
		if zone.Box.Contains(lat, lon) {
			return zone.Name
		}
	}
	return geo.FallbackArea
}
