// Package memory provides a concurrency-safe in-process station store and
// record sink for dry runs and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/couchcryptid/weather-seeder/internal/domain"
)

var (
	// ErrNotFound is returned when an update or delete names an unknown station.
	ErrNotFound = errors.New("station not found")
)

// Store keeps stations by ID and appended rows by table name.
type Store struct {
	mu sync.RWMutex

	// key: station ID
	stations map[string]domain.Station
	// key: table name
	rows map[string][]domain.Row
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		stations: make(map[string]domain.Station),
		rows:     make(map[string][]domain.Row),
	}
}

// ListStationIDs returns the set of persisted station IDs.
func (s *Store) ListStationIDs(_ context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]struct{}, len(s.stations))
	for id := range s.stations {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// ListStations returns all stations ordered by ID.
func (s *Store) ListStations(_ context.Context) ([]domain.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Station, 0, len(s.stations))
	for _, st := range s.stations {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// InsertStations adds new stations. Inserting an existing ID replaces it.
func (s *Store) InsertStations(_ context.Context, stations []domain.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range stations {
		s.stations[st.ID] = st
	}
	return nil
}

// UpdateStations merges generated fields into existing stations and keeps
// their created_at. The batch is rejected whole if any ID is unknown.
func (s *Store) UpdateStations(_ context.Context, stations []domain.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range stations {
		if _, ok := s.stations[st.ID]; !ok {
			return fmt.Errorf("update %s: %w", st.ID, ErrNotFound)
		}
	}
	for _, st := range stations {
		st.CreatedAt = s.stations[st.ID].CreatedAt
		s.stations[st.ID] = st
	}
	return nil
}

// DeleteStations removes stations by ID. Unknown IDs are ignored.
func (s *Store) DeleteStations(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.stations, id)
	}
	return nil
}

// Append stores a copy of rows under the table name.
func (s *Store) Append(_ context.Context, table domain.Table, rows []domain.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[table.Name] = append(s.rows[table.Name], rows...)
	return nil
}

// Rows returns the rows appended to a table so far.
func (s *Store) Rows(table domain.Table) []domain.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Row, len(s.rows[table.Name]))
	copy(out, s.rows[table.Name])
	return out
}

// Clear drops every station and appended row.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stations = make(map[string]domain.Station)
	s.rows = make(map[string][]domain.Row)
	return nil
}

// Summary counts stations and appended records and reports the station
// creation and observation time spans. Rows without a parseable timestamp
// are counted but left out of the span.
func (s *Store) Summary(_ context.Context) (domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	observations := s.rows[domain.ObservationsTable.Name]
	sum := domain.Summary{
		Stations:     int64(len(s.stations)),
		Observations: int64(len(observations)),
		Fires:        int64(len(s.rows[domain.FiresTable.Name])),
	}

	var created domain.Span
	for _, st := range s.stations {
		if st.Active {
			sum.ActiveStations++
		}
		created.Add(st.CreatedAt)
	}
	sum.OldestStation, sum.NewestStation = created.First, created.Last

	withData := make(map[string]struct{})
	var observed domain.Span
	for _, row := range observations {
		if id, ok := row["station_id"].(string); ok {
			withData[id] = struct{}{}
		}
		if ts, ok := row["timestamp"].(string); ok {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				observed.Add(t)
			}
		}
	}
	sum.StationsWithData = int64(len(withData))
	sum.FirstObservation, sum.LastObservation = observed.First, observed.Last
	return sum, nil
}
