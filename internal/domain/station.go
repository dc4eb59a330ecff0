package domain

import (
	"fmt"
	"strings"
	"time"
)

// Station is a fixed observation point. Location holds the WKT encoding as it
// is persisted; use Point to decode it.
type Station struct {
	ID         string     `json:"station_id"`
	Name       string     `json:"station_name"`
	Location   string     `json:"location"`
	ElevationM float64    `json:"elevation_meters"`
	Country    string     `json:"country"`
	Region     string     `json:"state_province"`
	City       string     `json:"city"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// Point decodes the station location, falling back to DefaultPoint when the
// stored value is malformed. ok is false when the fallback was used.
func (s Station) Point() (p Point, ok bool) {
	return ParsePointOrDefault(s.Location)
}

// StationID derives the stable identifier for the catalog entry at index,
// e.g. ("Munich Airport", 1) → "WS_MUNICH_AIRPORT_002".
func StationID(name string, index int) string {
	slug := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
	return fmt.Sprintf("WS_%s_%03d", slug, index+1)
}

// ActiveStations returns the active subset, preserving order.
func ActiveStations(stations []Station) []Station {
	active := make([]Station, 0, len(stations))
	for _, s := range stations {
		if s.Active {
			active = append(active, s)
		}
	}
	return active
}
