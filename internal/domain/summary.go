package domain

import "time"

// Summary reports what a store holds: record counts, how many stations have
// observations, and the time spans covered. Span bounds are nil when the
// underlying table is empty.
type Summary struct {
	Stations         int64      `json:"stations"`
	ActiveStations   int64      `json:"active_stations"`
	StationsWithData int64      `json:"stations_with_data"`
	Observations     int64      `json:"observations"`
	Fires            int64      `json:"fires"`
	OldestStation    *time.Time `json:"oldest_station,omitempty"`
	NewestStation    *time.Time `json:"newest_station,omitempty"`
	FirstObservation *time.Time `json:"first_observation,omitempty"`
	LastObservation  *time.Time `json:"last_observation,omitempty"`
}

// Span tracks the earliest and latest of a set of times.
type Span struct {
	First *time.Time
	Last  *time.Time
}

// Add widens the span to include t.
func (s *Span) Add(t time.Time) {
	t = t.UTC()
	if s.First == nil || t.Before(*s.First) {
		first := t
		s.First = &first
	}
	if s.Last == nil || t.After(*s.Last) {
		last := t
		s.Last = &last
	}
}
