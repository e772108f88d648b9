package pipeline

import (
	"sort"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/domain/entity"
)

// Temperature category labels, ordered coldest to hottest.
const (
	TempVeryCold = "Very Cold"
	TempCold     = "Cold"
	TempCool     = "Cool"
	TempMild     = "Mild"
	TempWarm     = "Warm"
	TempHot      = "Hot"
)

// Precipitation category labels, ordered driest to wettest.
const (
	PrecipNone     = "No Rain"
	PrecipLight    = "Light Rain"
	PrecipModerate = "Moderate Rain"
	PrecipHeavy    = "Heavy Rain"
	PrecipExtreme  = "Extreme Rain"
)

// Biking suitability ratings.
const (
	SuitabilityPoor      = "Poor"
	SuitabilityFair      = "Fair"
	SuitabilityGood      = "Good"
	SuitabilityExcellent = "Excellent"
)

// Suitability thresholds. Breaching any hard limit rates the day Poor no matter
// how good the other conditions are (worst-of-three logic).
const (
	suitHardTempMinC      = -5.0
	suitHardTempMaxC      = 35.0
	suitHardPrecipMM      = 20.0
	suitHardWindKMH       = 40.0
	suitGoodTempMinC      = 5.0
	suitGoodTempMaxC      = 30.0
	suitGoodPrecipMM      = 5.0
	suitGoodWindKMH       = 25.0
	suitExcellentTempMinC = 15.0
	suitExcellentTempMaxC = 25.0
	suitExcellentWindKMH  = 15.0
)

// CleanWeather produces the validated silver weather table for the single
// analysis location. Rows must carry a mean temperature and satisfy max >= min;
// negative precipitation and wind inputs are clamped to zero by substitution
// rather than rejection. One row per date is kept (first occurrence wins) and
// the output is sorted by date.
func CleanWeather(raw []entity.RawWeatherDay, geo config.GeoConfig) []entity.WeatherDay {
	seen := make(map[int64]bool, len(raw))
	out := make([]entity.WeatherDay, 0, len(raw))

	for i := range raw {
		r := &raw[i]
		if r.TemperatureMean == nil || r.TemperatureMax == nil || r.TemperatureMin == nil {
			continue
		}
		if *r.TemperatureMax < *r.TemperatureMin {
			continue
		}
		key := r.Date.Unix()
		if seen[key] {
			continue
		}
		seen[key] = true

		precip := clampNonNegative(r.PrecipitationSum)
		wind := clampNonNegative(r.WindSpeedMax)
		maxT, minT, meanT := *r.TemperatureMax, *r.TemperatureMin, *r.TemperatureMean

		out = append(out, entity.WeatherDay{
			Date:      r.Date,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,

			TemperatureMax:  maxT,
			TemperatureMin:  minT,
			TemperatureMean: meanT,

			ApparentTempMax:  r.ApparentTempMax,
			ApparentTempMin:  r.ApparentTempMin,
			ApparentTempMean: r.ApparentTempMean,

			PrecipitationSum: precip,
			RainSum:          clampNonNegative(r.RainSum),
			SnowfallSum:      clampNonNegative(r.SnowfallSum),

			WindSpeedMax:          wind,
			WindGustsMax:          clampNonNegative(r.WindGustsMax),
			WindDirectionDominant: r.WindDirectionDominant,
			CloudCoverMean:        r.CloudCoverMean,

			AverageTemperature:    (maxT + minT) / 2,
			TemperatureRange:      maxT - minT,
			TemperatureCategory:   TemperatureCategoryOf(meanT),
			PrecipitationCategory: PrecipitationCategoryOf(precip),
			Suitability:           SuitabilityOf(meanT, precip, wind),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func clampNonNegative(v *float64) float64 {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

// TemperatureCategoryOf buckets a mean temperature (degrees C) into the six
// ordered temperature bins.
func TemperatureCategoryOf(meanC float64) string {
	switch {
	case meanC < -10:
		return TempVeryCold
	case meanC < 0:
		return TempCold
	case meanC < 10:
		return TempCool
	case meanC < 20:
		return TempMild
	case meanC < 30:
		return TempWarm
	default:
		return TempHot
	}
}

// PrecipitationCategoryOf buckets a daily precipitation sum (mm) into the five
// ordered precipitation bins.
func PrecipitationCategoryOf(mm float64) string {
	switch {
	case mm == 0:
		return PrecipNone
	case mm <= 5:
		return PrecipLight
	case mm <= 20:
		return PrecipModerate
	case mm <= 50:
		return PrecipHeavy
	default:
		return PrecipExtreme
	}
}

// SuitabilityOf computes the composite biking-suitability rating with
// worst-of-three logic: Poor if any hard threshold is breached, otherwise
// Excellent, Good or Fair by progressively tighter joint thresholds.
func SuitabilityOf(meanC, precipMM, windKMH float64) string {
	if meanC < suitHardTempMinC || meanC > suitHardTempMaxC ||
		precipMM > suitHardPrecipMM || windKMH > suitHardWindKMH {
		return SuitabilityPoor
	}
	if meanC >= suitExcellentTempMinC && meanC <= suitExcellentTempMaxC &&
		precipMM == 0 && windKMH < suitExcellentWindKMH {
		return SuitabilityExcellent
	}
	if meanC >= suitGoodTempMinC && meanC <= suitGoodTempMaxC &&
		precipMM <= suitGoodPrecipMM && windKMH < suitGoodWindKMH {
		return SuitabilityGood
	}
	return SuitabilityFair
}
