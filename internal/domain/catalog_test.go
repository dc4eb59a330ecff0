package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_Valid(t *testing.T) {
	c := DefaultCatalog()
	assert.Len(t, c, 12)
	require.NoError(t, c.Validate())
}

func TestCatalog_ValidateRejectsBadTemplates(t *testing.T) {
	good := DefaultCatalog()[0]

	tests := []struct {
		name   string
		mutate func(*StationTemplate)
	}{
		{"missing name", func(s *StationTemplate) { s.Name = "" }},
		{"missing city", func(s *StationTemplate) { s.City = "" }},
		{"latitude out of range", func(s *StationTemplate) { s.Lat = 91 }},
		{"longitude out of range", func(s *StationTemplate) { s.Lon = -181 }},
		{"elevation too low", func(s *StationTemplate) { s.ElevationM = -501 }},
		{"unknown climate", func(s *StationTemplate) { s.Climate = "tropical" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := good
			tt.mutate(&bad)
			err := Catalog{good, bad}.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "catalog entry 1")
		})
	}
}

func TestCatalog_Stations(t *testing.T) {
	stations := DefaultCatalog().Stations(NewRand(1), 3, 0, testNow)

	require.Len(t, stations, 3)
	assert.Equal(t, "WS_BERLIN_TEMPELHOF_001", stations[0].ID)
	assert.Equal(t, "WS_MUNICH_AIRPORT_002", stations[1].ID)
	assert.Equal(t, "WS_HAMBURG_HARBOR_003", stations[2].ID)
	assert.Equal(t, "POINT(13.4021 52.4675)", stations[0].Location)
	assert.Equal(t, 448.0, stations[1].ElevationM)
	assert.Equal(t, "Bavaria", stations[1].Region)
	for _, s := range stations {
		assert.True(t, s.Active)
		assert.Equal(t, testNow, s.CreatedAt)
		assert.Nil(t, s.UpdatedAt)
	}
}

func TestCatalog_StationsCount(t *testing.T) {
	c := DefaultCatalog()
	assert.Len(t, c.Stations(NewRand(1), 0, 0, testNow), 12)
	assert.Len(t, c.Stations(NewRand(1), 50, 0, testNow), 12)
	assert.Len(t, c.Stations(NewRand(1), 8, 0, testNow), 8)
}

func TestCatalog_StationsInactive(t *testing.T) {
	c := DefaultCatalog()
	assert.Empty(t, ActiveStations(c.Stations(NewRand(1), 0, 1, testNow)))

	a := c.Stations(NewRand(77), 0, 0.5, testNow)
	b := c.Stations(NewRand(77), 0, 0.5, testNow)
	assert.Equal(t, a, b)
}

func TestStationID(t *testing.T) {
	assert.Equal(t, "WS_BERLIN_TEMPELHOF_001", StationID("Berlin Tempelhof", 0))
	assert.Equal(t, "WS_COLOGNE_WEATHER_STATION_005", StationID("Cologne Weather Station", 4))
	assert.Equal(t, "WS_X_120", StationID(" x ", 119))
}

func TestStation_Point(t *testing.T) {
	s := Station{Location: "POINT(9.1829 48.7758)"}
	p, ok := s.Point()
	assert.True(t, ok)
	assert.Equal(t, Point{Lat: 48.7758, Lon: 9.1829}, p)

	s.Location = ""
	p, ok = s.Point()
	assert.False(t, ok)
	assert.Equal(t, DefaultPoint, p)
}
