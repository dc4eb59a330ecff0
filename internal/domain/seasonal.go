package domain

import (
	"math"
	"time"
)

// Season is a meteorological season band.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// LapseRate is the temperature drop per metre of elevation (6.5°C per 1000m).
const LapseRate = 6.5 / 1000

// SeasonalParams are the baseline parameters for a calendar day.
type SeasonalParams struct {
	BaseTemp float64
	Season   Season
	Variance float64
}

// SeasonalParamsFor maps a date to its baseline temperature, season and
// temperature variance. Only the day of year matters.
func SeasonalParamsFor(date time.Time) SeasonalParams {
	day := date.YearDay()
	baseTemp := 10 + 15*math.Sin(2*math.Pi*float64(day-80)/365)

	season := seasonForDay(day)
	variance := 5.0
	if season == SeasonSpring || season == SeasonAutumn {
		variance = 8
	}

	return SeasonalParams{BaseTemp: baseTemp, Season: season, Variance: variance}
}

func seasonForDay(day int) Season {
	switch {
	case day >= 80 && day <= 172:
		return SeasonSpring
	case day >= 173 && day <= 266:
		return SeasonSummer
	case day >= 267 && day <= 355:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}

// ElevationAdjusted lowers a baseline temperature by the lapse rate.
func ElevationAdjusted(baseTemp, elevationM float64) float64 {
	return baseTemp - elevationM*LapseRate
}

// DiurnalAdjustment is the time-of-day temperature offset: coldest at 00:00,
// warmest at 12:00, with amplitude 5°C.
func DiurnalAdjustment(hour float64) float64 {
	return 5 * math.Sin(math.Pi*(hour-6)/12)
}
