package domain

import (
	"fmt"
	"time"
)

// Row is one encoded record keyed by column name.
type Row map[string]any

// Table names a destination and its column order. Key is the column that
// identifies a row.
type Table struct {
	Name    string
	Columns []string
	Key     string
}

// Values returns the row's values in column order.
func (t Table) Values(r Row) []any {
	vals := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		vals[i] = r[c]
	}
	return vals
}

// KeyOf returns the row's key column rendered as a string.
func (t Table) KeyOf(r Row) string {
	switch v := r[t.Key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

var (
	StationsTable = Table{
		Name: "weather_stations",
		Columns: []string{
			"station_id", "station_name", "location", "elevation_meters",
			"country", "state_province", "city", "active", "created_at", "updated_at",
		},
		Key: "station_id",
	}

	ObservationsTable = Table{
		Name: "weather_observations",
		Columns: []string{
			"observation_id", "station_id", "timestamp", "location",
			"temperature_celsius", "humidity_percent", "pressure_hpa",
			"wind_speed_ms", "wind_direction_degrees", "precipitation_mm",
			"visibility_km", "weather_condition",
		},
		Key: "observation_id",
	}

	FiresTable = Table{
		Name: "fire_records",
		Columns: []string{
			"fire_id", "fire_name", "location", "fire_date", "containment_date",
			"size_hectares", "cause", "status", "country", "state_province", "city",
		},
		Key: "fire_id",
	}
)

// StationRow encodes a station. A nil UpdatedAt encodes as nil.
func StationRow(s Station) Row {
	var updated any
	if s.UpdatedAt != nil {
		updated = formatTime(*s.UpdatedAt)
	}
	return Row{
		"station_id":       s.ID,
		"station_name":     s.Name,
		"location":         s.Location,
		"elevation_meters": s.ElevationM,
		"country":          s.Country,
		"state_province":   s.Region,
		"city":             s.City,
		"active":           s.Active,
		"created_at":       formatTime(s.CreatedAt),
		"updated_at":       updated,
	}
}

func ObservationRow(o Observation) Row {
	return Row{
		"observation_id":         o.ID,
		"station_id":             o.StationID,
		"timestamp":              formatTime(o.Timestamp),
		"location":               o.Location,
		"temperature_celsius":    o.TemperatureC,
		"humidity_percent":       o.HumidityPct,
		"pressure_hpa":           o.PressureHPa,
		"wind_speed_ms":          o.WindSpeedMS,
		"wind_direction_degrees": o.WindDirectionDeg,
		"precipitation_mm":       o.PrecipitationMM,
		"visibility_km":          o.VisibilityKM,
		"weather_condition":      string(o.Condition),
	}
}

func FireRow(f FireRecord) Row {
	return Row{
		"fire_id":          f.FireID,
		"fire_name":        f.Name,
		"location":         f.Location.WKT(),
		"fire_date":        formatTime(f.FireDate),
		"containment_date": formatTime(f.ContainmentDate),
		"size_hectares":    f.SizeHectares,
		"cause":            string(f.Cause),
		"status":           string(f.Status),
		"country":          f.Country,
		"state_province":   f.Region,
		"city":             f.City,
	}
}

// ObservationRows encodes a batch of observations.
func ObservationRows(obs []Observation) []Row {
	rows := make([]Row, len(obs))
	for i, o := range obs {
		rows[i] = ObservationRow(o)
	}
	return rows
}

// FireRows encodes a batch of fires.
func FireRows(fires []FireRecord) []Row {
	rows := make([]Row, len(fires))
	for i, f := range fires {
		rows[i] = FireRow(f)
	}
	return rows
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
