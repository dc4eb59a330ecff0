// Command validate performs integrity checks on a mock data set written by
// genmock: station identity, observation cadence and physical envelopes,
// fire record consistency, and byte-for-byte reproducibility from the
// manifest.
//
// Usage:
//
//	go run ./cmd/validate -dir data/mock
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/weather-seeder/internal/domain"
	"github.com/couchcryptid/weather-seeder/internal/fixture"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// fireRecord mirrors a fire_records row as written to JSON.
type fireRecord struct {
	FireID          int64             `json:"fire_id"`
	Name            string            `json:"fire_name"`
	Location        string            `json:"location"`
	FireDate        time.Time         `json:"fire_date"`
	ContainmentDate time.Time         `json:"containment_date"`
	SizeHectares    float64           `json:"size_hectares"`
	Cause           domain.FireCause  `json:"cause"`
	Status          domain.FireStatus `json:"status"`
	Country         string            `json:"country"`
	Region          string            `json:"state_province"`
	City            string            `json:"city"`
}

// dataset is a loaded fixture directory.
type dataset struct {
	manifest     fixture.Manifest
	stations     []domain.Station
	observations []domain.Observation
	fires        []fireRecord
	raw          map[string][]byte
}

func main() {
	dir := flag.String("dir", "", "fixture directory written by genmock")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dir); code != 0 {
		os.Exit(code)
	}
}

func run(dir string) int {
	fmt.Println("=== Weather Seeder Fixture Validation ===")
	fmt.Println()

	ds, err := load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	r, err := ds.manifest.Range()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: manifest range: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateStations(ds),
		validateObservations(ds, r),
		validateFires(ds, r),
		validateReproducibility(ds),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d stations, %d observations, %d fires (seed %d, %s..%s)\n",
		len(ds.stations), len(ds.observations), len(ds.fires),
		ds.manifest.Seed, ds.manifest.Start, ds.manifest.End)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func load(dir string) (*dataset, error) {
	ds := &dataset{raw: make(map[string][]byte)}

	m, err := fixture.LoadManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	ds.manifest = m

	targets := map[string]any{
		fixture.StationsFile:     &ds.stations,
		fixture.ObservationsFile: &ds.observations,
		fixture.FiresFile:        &ds.fires,
	}
	for name, v := range targets {
		path := filepath.Join(dir, name)
		if err := fixture.LoadJSON(path, v); err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
	}
	for _, name := range []string{fixture.ManifestFile, fixture.StationsFile, fixture.ObservationsFile, fixture.FiresFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		ds.raw[name] = data
	}
	return ds, nil
}

// regenerate rebuilds the fixture from its manifest.
func regenerate(m fixture.Manifest) (map[string][]byte, error) {
	set, err := fixture.Generate(context.Background(), m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return nil, err
	}
	return set.Files()
}
