package domain

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"
)

// FireCause is the recorded ignition source.
type FireCause string

const (
	CauseLightning FireCause = "lightning"
	CauseHuman     FireCause = "human"
	CauseEquipment FireCause = "equipment"
	CauseArson     FireCause = "arson"
	CauseUnknown   FireCause = "unknown"
)

// FireCauses lists every cause.
var FireCauses = []FireCause{CauseLightning, CauseHuman, CauseEquipment, CauseArson, CauseUnknown}

// FireStatus is the suppression state of a fire.
type FireStatus string

const (
	StatusContained  FireStatus = "contained"
	StatusControlled FireStatus = "controlled"
	StatusOut        FireStatus = "out"
)

// FireStatuses lists every status.
var FireStatuses = []FireStatus{StatusContained, StatusControlled, StatusOut}

// FireRecord is a synthesized wildfire-ignition event near a station.
type FireRecord struct {
	FireID          int64      `json:"fire_id"`
	Name            string     `json:"fire_name"`
	Location        Point      `json:"location"`
	FireDate        time.Time  `json:"fire_date"`
	ContainmentDate time.Time  `json:"containment_date"`
	SizeHectares    float64    `json:"size_hectares"`
	Cause           FireCause  `json:"cause"`
	Status          FireStatus `json:"status"`
	Country         string     `json:"country"`
	Region          string     `json:"state_province"`
	City            string     `json:"city"`
}

// defaultBaseRisk applies to regions missing from regionBaseRisk.
const defaultBaseRisk = 0.05

// maxWeatherMultiplier caps the combined weather multiplier.
const maxWeatherMultiplier = 10.0

var regionBaseRisk = map[string]float64{
	"Brandenburg":            0.15,
	"Lower Saxony":           0.12,
	"Bavaria":                0.10,
	"Saxony":                 0.08,
	"Hesse":                  0.07,
	"North Rhine-Westphalia": 0.06,
	"Baden-Württemberg":      0.06,
}

var monthRiskMultiplier = [12]float64{
	0.3, // Jan
	0.4, // Feb
	0.8, // Mar
	1.5, // Apr
	1.8, // May
	2.2, // Jun
	2.5, // Jul
	2.8, // Aug
	2.0, // Sep
	1.0, // Oct
	0.5, // Nov
	0.4, // Dec
}

// RegionBaseRisk returns the daily base ignition risk for a region.
func RegionBaseRisk(region string) float64 {
	if r, ok := regionBaseRisk[region]; ok {
		return r
	}
	return defaultBaseRisk
}

// SeasonalRiskMultiplier returns the fire-season multiplier for a month.
func SeasonalRiskMultiplier(m time.Month) float64 {
	return monthRiskMultiplier[m-1]
}

// DailyWeather is the simulated peak-of-day weather used for fire risk.
type DailyWeather struct {
	TempC        float64
	HumidityPct  float64
	WindSpeedMS  float64
	DrySpellDays int
}

// WeatherRiskMultiplier combines the weather thresholds multiplicatively,
// capped at 10.
func WeatherRiskMultiplier(w DailyWeather) float64 {
	m := 1.0

	switch {
	case w.TempC > 30:
		m *= 2.0
	case w.TempC > 25:
		m *= 1.5
	}

	switch {
	case w.HumidityPct < 30:
		m *= 2.0
	case w.HumidityPct < 50:
		m *= 1.3
	}

	switch {
	case w.WindSpeedMS > 15:
		m *= 2.0
	case w.WindSpeedMS > 10:
		m *= 1.4
	}

	switch {
	case w.DrySpellDays > 20:
		m *= 2.5
	case w.DrySpellDays > 10:
		m *= 1.6
	}

	return math.Min(m, maxWeatherMultiplier)
}

// IgnitionProbability is the chance of a fire starting at a station in region
// on date under the given weather, clamped to [0, 1].
func IgnitionProbability(region string, date time.Time, w DailyWeather) float64 {
	p := RegionBaseRisk(region) * SeasonalRiskMultiplier(date.Month()) * WeatherRiskMultiplier(w)
	return math.Min(p, 1)
}

// FireIDCounter hands out run-scoped, monotonically increasing fire IDs.
type FireIDCounter struct {
	last atomic.Int64
}

// Next returns the next ID, starting at 1.
func (c *FireIDCounter) Next() int64 {
	return c.last.Add(1)
}

// SimulateFires runs the ignition model for every active station over r.
// Fires are ordered by station then date and numbered from ids. The i-th
// active station draws from rng.FireChild(i).
func SimulateFires(rng *Rand, stations []Station, r DateRange, ids *FireIDCounter) ([]FireRecord, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	days := r.Days()
	var out []FireRecord
	for i, s := range ActiveStations(stations) {
		out = append(out, SimulateStationFires(rng.FireChild(i), s, days)...)
	}
	AssignFireIDs(out, ids)
	return out, nil
}

// SimulateStationFires runs the ignition model for one station over
// consecutive days. The returned fires have no ID or name yet; see
// AssignFireIDs.
func SimulateStationFires(rng *Rand, s Station, days []time.Time) []FireRecord {
	origin, _ := s.Point()

	var out []FireRecord
	drySpell := 0
	for _, d := range days {
		w, condition := simulateDailyWeather(rng, s, d)
		if condition.Wet() {
			drySpell = 0
		} else {
			drySpell++
		}
		w.DrySpellDays = drySpell

		if !rng.Bernoulli(IgnitionProbability(s.Region, d, w)) {
			continue
		}
		out = append(out, sampleFire(rng, s, origin, d))
	}
	return out
}

// AssignFireIDs numbers fires in order and gives unnamed fires a default name.
func AssignFireIDs(fires []FireRecord, ids *FireIDCounter) {
	for i := range fires {
		fires[i].FireID = ids.Next()
		if fires[i].Name == "" {
			fires[i].Name = FireName(fires[i].City, fires[i].FireID)
		}
	}
}

// FireName formats a fire's display name from a place and its ID.
func FireName(place string, id int64) string {
	return fmt.Sprintf("%s Fire #%d", place, id)
}

// simulateDailyWeather samples the midday peak at a station. The returned
// weather has no dry-spell count; the caller tracks it across days.
func simulateDailyWeather(rng *Rand, s Station, d time.Time) (DailyWeather, Condition) {
	params := SeasonalParamsFor(d)
	temp := ElevationAdjusted(params.BaseTemp, s.ElevationM) + DiurnalAdjustment(12) + rng.Gaussian(0, params.Variance)
	condition := Classify(rng, temp, params.Season)
	env := condition.Envelope()
	temp = clampToEnvelope(rng, temp, env)

	return DailyWeather{
		TempC:       temp,
		HumidityPct: rng.Uniform(env.Humidity.Min, env.Humidity.Max),
		WindSpeedMS: rng.LogNormal(2, 0.5),
	}, condition
}

func sampleFire(rng *Rand, s Station, origin Point, d time.Time) FireRecord {
	loc := Point{
		Lat: round(origin.Lat+rng.Uniform(-0.5, 0.5), 4),
		Lon: round(origin.Lon+rng.Uniform(-0.5, 0.5), 4),
	}
	fireDate := d.Add(time.Duration(rng.IntN(24)) * time.Hour)
	containment := fireDate.Add(time.Duration(rng.IntRange(1, 14)) * day)

	return FireRecord{
		Location:        loc,
		FireDate:        fireDate,
		ContainmentDate: containment,
		SizeHectares:    round(math.Max(0.1, rng.LogNormal(1, 1.5)), 2),
		Cause:           pick(rng, FireCauses),
		Status:          pick(rng, FireStatuses),
		Country:         s.Country,
		Region:          s.Region,
		City:            s.City,
	}
}
