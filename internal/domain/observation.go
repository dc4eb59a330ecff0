package domain

import (
	"fmt"
	"math"
	"time"
)

// DefaultMissingRate is the probability that a scheduled reading is dropped.
const DefaultMissingRate = 0.05

// Observation is one timestamped weather reading at a station.
type Observation struct {
	ID               string    `json:"observation_id"`
	StationID        string    `json:"station_id"`
	Timestamp        time.Time `json:"timestamp"`
	Location         string    `json:"location"`
	TemperatureC     float64   `json:"temperature_celsius"`
	HumidityPct      float64   `json:"humidity_percent"`
	PressureHPa      float64   `json:"pressure_hpa"`
	WindSpeedMS      float64   `json:"wind_speed_ms"`
	WindDirectionDeg float64   `json:"wind_direction_degrees"`
	PrecipitationMM  float64   `json:"precipitation_mm"`
	VisibilityKM     float64   `json:"visibility_km"`
	Condition        Condition `json:"weather_condition"`
}

// ObservationOptions controls the observation cadence.
type ObservationOptions struct {
	PerDay      int
	MissingRate float64
}

// DefaultObservationOptions returns four readings per day with 5% dropped.
func DefaultObservationOptions() ObservationOptions {
	return ObservationOptions{PerDay: 4, MissingRate: DefaultMissingRate}
}

// Validate checks the cadence and missing-data rate.
func (o ObservationOptions) Validate() error {
	if err := validateCadence(o.PerDay); err != nil {
		return err
	}
	if o.MissingRate < 0 || o.MissingRate > 1 {
		return fmt.Errorf("invalid missing rate %v: must be within [0, 1]", o.MissingRate)
	}
	return nil
}

// SynthesizeObservations generates readings for every active station over r,
// ordered by station and then by time. The i-th active station draws from
// rng.Child(i), matching a concurrent per-station fan-out.
func SynthesizeObservations(rng *Rand, stations []Station, r DateRange, opts ObservationOptions) ([]Observation, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	days := r.Days()
	var out []Observation
	for i, s := range ActiveStations(stations) {
		out = append(out, SynthesizeStationObservations(rng.Child(i), s, days, opts)...)
	}
	return out, nil
}

// SynthesizeStationObservations generates one station's readings for the given
// days in chronological order. Inputs are assumed valid.
func SynthesizeStationObservations(rng *Rand, s Station, days []time.Time, opts ObservationOptions) []Observation {
	point, _ := s.Point()
	location := point.WKT()
	step := day / time.Duration(opts.PerDay)

	out := make([]Observation, 0, len(days)*opts.PerDay)
	for _, d := range days {
		params := SeasonalParamsFor(d)
		baseTemp := ElevationAdjusted(params.BaseTemp, s.ElevationM)

		for k := 0; k < opts.PerDay; k++ {
			if rng.Bernoulli(opts.MissingRate) {
				continue
			}
			ts := d.Add(time.Duration(k) * step)
			out = append(out, sampleObservation(rng, s.ID, location, ts, baseTemp, HourOfDay(ts), params))
		}
	}
	return out
}

func sampleObservation(rng *Rand, stationID, location string, ts time.Time, baseTemp, hour float64, params SeasonalParams) Observation {
	temp := baseTemp + DiurnalAdjustment(hour) + rng.Gaussian(0, params.Variance)
	condition := Classify(rng, temp, params.Season)
	env := condition.Envelope()
	temp = clampToEnvelope(rng, temp, env)

	humidity := rng.Uniform(env.Humidity.Min, env.Humidity.Max)
	pressure := rng.Gaussian(1013.25, 15)
	windSpeed := rng.LogNormal(2, 0.5)
	windDir := rng.Uniform(0, 360)
	precip := math.Max(0, rng.Exponential(5/math.Max(1, env.PrecipMaxMM)))

	visibilityMin := 5.0
	if condition == ConditionFoggy {
		visibilityMin = 0.1
	}
	visibility := rng.Uniform(visibilityMin, 50)

	return Observation{
		ID:               rng.UUID(),
		StationID:        stationID,
		Timestamp:        ts,
		Location:         location,
		TemperatureC:     round(temp, 1),
		HumidityPct:      round(humidity, 1),
		PressureHPa:      round(pressure, 1),
		WindSpeedMS:      round(windSpeed, 1),
		WindDirectionDeg: round(windDir, 1),
		PrecipitationMM:  round(precip, 2),
		VisibilityKM:     round(visibility, 1),
		Condition:        condition,
	}
}

// HourOfDay returns the fractional UTC hour of t, in [0, 24).
func HourOfDay(t time.Time) float64 {
	t = t.UTC()
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
