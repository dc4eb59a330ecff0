package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStationRow(t *testing.T) {
	s := testStations(1)[0]
	row := StationRow(s)

	assert.Equal(t, "WS_BERLIN_TEMPELHOF_001", row["station_id"])
	assert.Equal(t, "POINT(13.4021 52.4675)", row["location"])
	assert.Equal(t, "2024-06-01T12:00:00Z", row["created_at"])
	assert.Nil(t, row["updated_at"])

	updated := testNow.Add(time.Hour)
	s.UpdatedAt = &updated
	assert.Equal(t, "2024-06-01T13:00:00Z", StationRow(s)["updated_at"])

	vals := StationsTable.Values(row)
	require.Len(t, vals, len(StationsTable.Columns))
	assert.Equal(t, "WS_BERLIN_TEMPELHOF_001", vals[0])
	assert.Equal(t, "WS_BERLIN_TEMPELHOF_001", StationsTable.KeyOf(row))
}

func TestObservationRow(t *testing.T) {
	berlin := time.FixedZone("CEST", 2*60*60)
	o := Observation{
		ID:           "obs-1",
		StationID:    "WS_BERLIN_TEMPELHOF_001",
		Timestamp:    time.Date(2024, 6, 1, 8, 0, 0, 0, berlin),
		Location:     "POINT(13.4021 52.4675)",
		TemperatureC: 18.4,
		Condition:    ConditionCloudy,
	}

	row := ObservationRow(o)

	assert.Equal(t, "2024-06-01T06:00:00Z", row["timestamp"])
	assert.Equal(t, "cloudy", row["weather_condition"])
	assert.Equal(t, 18.4, row["temperature_celsius"])
	assert.Equal(t, "obs-1", ObservationsTable.KeyOf(row))
	assert.Len(t, ObservationRows([]Observation{o, o}), 2)
}

func TestFireRow(t *testing.T) {
	f := FireRecord{
		FireID:          7,
		Name:            "Potsdam Fire #7",
		Location:        Point{Lat: 52.1, Lon: 13.2},
		FireDate:        testNow,
		ContainmentDate: testNow.Add(48 * time.Hour),
		SizeHectares:    3.25,
		Cause:           CauseLightning,
		Status:          StatusOut,
	}

	row := FireRow(f)

	assert.Equal(t, "POINT(13.2 52.1)", row["location"])
	assert.Equal(t, "2024-06-03T12:00:00Z", row["containment_date"])
	assert.Equal(t, "lightning", row["cause"])
	assert.Equal(t, "7", FiresTable.KeyOf(row))
	assert.Equal(t, int64(7), FiresTable.Values(row)[0])
}

func TestTableKeyOf_Missing(t *testing.T) {
	assert.Empty(t, FiresTable.KeyOf(Row{}))
}
