package domain

// Condition is a weather-condition category.
type Condition string

const (
	ConditionSunny        Condition = "sunny"
	ConditionPartlyCloudy Condition = "partly_cloudy"
	ConditionCloudy       Condition = "cloudy"
	ConditionRainy        Condition = "rainy"
	ConditionStormy       Condition = "stormy"
	ConditionSnowy        Condition = "snowy"
	ConditionFoggy        Condition = "foggy"
)

// Conditions lists every condition in declaration order.
var Conditions = []Condition{
	ConditionSunny,
	ConditionPartlyCloudy,
	ConditionCloudy,
	ConditionRainy,
	ConditionStormy,
	ConditionSnowy,
	ConditionFoggy,
}

// Range is a closed numeric interval.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Envelope bounds the readings sampled under a condition.
type Envelope struct {
	Temp        Range
	Humidity    Range
	PrecipMaxMM float64
}

var envelopes = map[Condition]Envelope{
	ConditionSunny:        {Temp: Range{15, 35}, Humidity: Range{30, 60}, PrecipMaxMM: 0},
	ConditionPartlyCloudy: {Temp: Range{10, 30}, Humidity: Range{40, 70}, PrecipMaxMM: 2},
	ConditionCloudy:       {Temp: Range{5, 25}, Humidity: Range{50, 80}, PrecipMaxMM: 5},
	ConditionRainy:        {Temp: Range{5, 20}, Humidity: Range{70, 95}, PrecipMaxMM: 50},
	ConditionStormy:       {Temp: Range{8, 22}, Humidity: Range{75, 95}, PrecipMaxMM: 100},
	ConditionSnowy:        {Temp: Range{-10, 3}, Humidity: Range{80, 95}, PrecipMaxMM: 30},
	ConditionFoggy:        {Temp: Range{0, 15}, Humidity: Range{85, 98}, PrecipMaxMM: 1},
}

// Envelope returns the parameter envelope for the condition.
func (c Condition) Envelope() Envelope {
	return envelopes[c]
}

// Valid reports whether c is a known condition.
func (c Condition) Valid() bool {
	_, ok := envelopes[c]
	return ok
}

// Wet reports whether the condition brings precipitation that breaks a dry spell.
func (c Condition) Wet() bool {
	return c == ConditionRainy || c == ConditionStormy || c == ConditionSnowy
}

// Temperature bands and the conditions drawn within them. Stormy is never
// drawn by the classifier.
var (
	freezingConditions = []Condition{ConditionSnowy, ConditionCloudy, ConditionFoggy}
	coldConditions     = []Condition{ConditionCloudy, ConditionFoggy, ConditionRainy, ConditionPartlyCloudy}
	mildConditions     = []Condition{ConditionCloudy, ConditionRainy, ConditionPartlyCloudy, ConditionSunny}
	warmConditions     = []Condition{ConditionSunny, ConditionPartlyCloudy, ConditionCloudy}
	hotConditions      = []Condition{ConditionSunny, ConditionPartlyCloudy}
)

// CandidateConditions returns the conditions eligible at temp.
func CandidateConditions(temp float64) []Condition {
	switch {
	case temp < -5:
		return freezingConditions
	case temp < 5:
		return coldConditions
	case temp < 15:
		return mildConditions
	case temp < 25:
		return warmConditions
	default:
		return hotConditions
	}
}

// Classify draws a condition uniformly from the candidates for temp.
// The season does not currently bias the draw.
func Classify(rng *Rand, temp float64, _ Season) Condition {
	return pick(rng, CandidateConditions(temp))
}

// clampToEnvelope pulls temp back near the envelope when it falls outside,
// landing within ±2°C of the violated bound.
func clampToEnvelope(rng *Rand, temp float64, env Envelope) float64 {
	switch {
	case temp < env.Temp.Min:
		return env.Temp.Min + rng.Uniform(-2, 2)
	case temp > env.Temp.Max:
		return env.Temp.Max + rng.Uniform(-2, 2)
	default:
		return temp
	}
}
