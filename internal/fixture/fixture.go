// Package fixture generates, writes, and loads the deterministic mock data set
// used by downstream test suites. Generation runs the real Seeder against an
// in-memory store under a frozen clock, so a manifest fully determines the
// output.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/weather-seeder/internal/adapter/memory"
	"github.com/couchcryptid/weather-seeder/internal/domain"
	"github.com/couchcryptid/weather-seeder/internal/observability"
	"github.com/couchcryptid/weather-seeder/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

// File names inside a fixture directory.
const (
	ManifestFile     = "manifest.json"
	StationsFile     = "weather_stations.json"
	ObservationsFile = "weather_observations.json"
	FiresFile        = "fire_records.json"
)

// Manifest records every input that shapes a fixture.
type Manifest struct {
	Seed                int64     `json:"seed"`
	Start               string    `json:"start"`
	End                 string    `json:"end"`
	Stations            int       `json:"stations"`
	ObservationsPerDay  int       `json:"observations_per_day"`
	MissingRate         float64   `json:"missing_rate"`
	InactiveProbability float64   `json:"inactive_probability"`
	Fires               bool      `json:"fires"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// DefaultManifest covers the first week of June 2024 for all eight primary
// stations.
func DefaultManifest() Manifest {
	return Manifest{
		Seed:                42,
		Start:               "2024-06-01",
		End:                 "2024-06-08",
		Stations:            8,
		ObservationsPerDay:  4,
		MissingRate:         domain.DefaultMissingRate,
		InactiveProbability: 0.1,
		Fires:               true,
		GeneratedAt:         time.Date(2024, time.June, 8, 6, 0, 0, 0, time.UTC),
	}
}

// Range parses the manifest's date bounds.
func (m Manifest) Range() (domain.DateRange, error) {
	return domain.ParseDateRange(m.Start, m.End)
}

// Set is one generated fixture.
type Set struct {
	Manifest     Manifest
	Stations     []domain.Station
	Observations []domain.Row
	Fires        []domain.Row
}

// Generate runs a full seeding pass for m. The package clock is frozen at
// m.GeneratedAt for the duration of the call and reset afterwards.
func Generate(ctx context.Context, m Manifest, logger *slog.Logger) (*Set, error) {
	if m.Seed == 0 {
		return nil, fmt.Errorf("fixture seed must be non-zero")
	}
	r, err := m.Range()
	if err != nil {
		return nil, err
	}

	domain.SetClock(clockwork.NewFakeClockAt(m.GeneratedAt))
	defer domain.SetClock(nil)

	store := memory.NewStore()
	seeder := pipeline.New(store, store, nil, logger, observability.NewMetricsForTesting(), pipeline.Options{
		Seed:                m.Seed,
		NumStations:         m.Stations,
		InactiveProbability: m.InactiveProbability,
		Observations: domain.ObservationOptions{
			PerDay:      m.ObservationsPerDay,
			MissingRate: m.MissingRate,
		},
		FiresEnabled: m.Fires,
		Workers:      4,
	})
	if err := seeder.Run(ctx, pipeline.ModeAll, r); err != nil {
		return nil, err
	}

	stations, err := store.ListStations(ctx)
	if err != nil {
		return nil, err
	}
	return &Set{
		Manifest:     m,
		Stations:     stations,
		Observations: store.Rows(domain.ObservationsTable),
		Fires:        store.Rows(domain.FiresTable),
	}, nil
}

// Files returns the encoded contents of every fixture file, keyed by name.
func (s *Set) Files() (map[string][]byte, error) {
	parts := map[string]any{
		ManifestFile:     s.Manifest,
		StationsFile:     s.Stations,
		ObservationsFile: nonNil(s.Observations),
		FiresFile:        nonNil(s.Fires),
	}
	files := make(map[string][]byte, len(parts))
	for name, v := range parts {
		data, err := Encode(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		files[name] = data
	}
	return files, nil
}

// Write stores the fixture files under dir, creating it if needed.
func (s *Set) Write(dir string) error {
	files, err := s.Files()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// Encode renders v the way fixture files are written: indented JSON with a
// trailing newline.
func Encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// LoadManifest reads the manifest from a fixture directory.
func LoadManifest(dir string) (Manifest, error) {
	var m Manifest
	err := LoadJSON(filepath.Join(dir, ManifestFile), &m)
	return m, err
}

// LoadJSON decodes one fixture file into v.
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func nonNil(rows []domain.Row) []domain.Row {
	if rows == nil {
		return []domain.Row{}
	}
	return rows
}
