package domain

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// StationTemplate is one catalog entry.
type StationTemplate struct {
	Name       string  `json:"name" validate:"required"`
	Country    string  `json:"country" validate:"required"`
	Region     string  `json:"state_province" validate:"required"`
	City       string  `json:"city" validate:"required"`
	Lat        float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon        float64 `json:"lon" validate:"gte=-180,lte=180"`
	ElevationM float64 `json:"elevation" validate:"gte=-500"`
	Climate    string  `json:"climate" validate:"omitempty,oneof=temperate maritime continental"`
}

// Catalog is the ordered list of station templates. Order is part of station
// identity: moving an entry changes its ID.
type Catalog []StationTemplate

// DefaultCatalog is the built-in set of German stations.
func DefaultCatalog() Catalog {
	return Catalog{
		{Name: "Berlin Tempelhof", Country: "Germany", Region: "Berlin", City: "Berlin", Lat: 52.4675, Lon: 13.4021, ElevationM: 50, Climate: "temperate"},
		{Name: "Munich Airport", Country: "Germany", Region: "Bavaria", City: "Munich", Lat: 48.3538, Lon: 11.7861, ElevationM: 448, Climate: "temperate"},
		{Name: "Hamburg Harbor", Country: "Germany", Region: "Hamburg", City: "Hamburg", Lat: 53.5488, Lon: 9.9872, ElevationM: 8, Climate: "maritime"},
		{Name: "Frankfurt Central", Country: "Germany", Region: "Hesse", City: "Frankfurt", Lat: 50.1109, Lon: 8.6821, ElevationM: 112, Climate: "temperate"},
		{Name: "Cologne Weather Station", Country: "Germany", Region: "North Rhine-Westphalia", City: "Cologne", Lat: 50.9375, Lon: 6.9603, ElevationM: 37, Climate: "temperate"},
		{Name: "Stuttgart Observatory", Country: "Germany", Region: "Baden-Württemberg", City: "Stuttgart", Lat: 48.7758, Lon: 9.1829, ElevationM: 245, Climate: "temperate"},
		{Name: "Dresden Elbe", Country: "Germany", Region: "Saxony", City: "Dresden", Lat: 51.0504, Lon: 13.7373, ElevationM: 113, Climate: "continental"},
		{Name: "Nuremberg Central", Country: "Germany", Region: "Bavaria", City: "Nuremberg", Lat: 49.4521, Lon: 11.0767, ElevationM: 302, Climate: "temperate"},
		{Name: "Düsseldorf Airport", Country: "Germany", Region: "North Rhine-Westphalia", City: "Düsseldorf", Lat: 51.2895, Lon: 6.7668, ElevationM: 45, Climate: "temperate"},
		{Name: "Leipzig Weather Center", Country: "Germany", Region: "Saxony", City: "Leipzig", Lat: 51.3397, Lon: 12.3731, ElevationM: 113, Climate: "continental"},
		{Name: "Hannover Station", Country: "Germany", Region: "Lower Saxony", City: "Hannover", Lat: 52.3759, Lon: 9.7320, ElevationM: 55, Climate: "temperate"},
		{Name: "Bremen Port", Country: "Germany", Region: "Bremen", City: "Bremen", Lat: 53.0793, Lon: 8.8017, ElevationM: 11, Climate: "maritime"},
	}
}

// Validate checks every template and reports the first invalid entry.
func (c Catalog) Validate() error {
	for i := range c {
		if err := validate.Struct(c[i]); err != nil {
			return fmt.Errorf("catalog entry %d (%q): %w", i, c[i].Name, err)
		}
	}
	return nil
}

// Stations builds up to count stations from the catalog (count <= 0 means all).
// Each station is inactive with probability inactiveProb, decided by rng.
// Identity depends only on the template name and position.
func (c Catalog) Stations(rng *Rand, count int, inactiveProb float64, now time.Time) []Station {
	if count <= 0 || count > len(c) {
		count = len(c)
	}

	stations := make([]Station, 0, count)
	for i := 0; i < count; i++ {
		t := c[i]
		stations = append(stations, Station{
			ID:         StationID(t.Name, i),
			Name:       t.Name,
			Location:   Point{Lat: t.Lat, Lon: t.Lon}.WKT(),
			ElevationM: t.ElevationM,
			Country:    t.Country,
			Region:     t.Region,
			City:       t.City,
			Active:     !rng.Bernoulli(inactiveProb),
			CreatedAt:  now,
		})
	}
	return stations
}
