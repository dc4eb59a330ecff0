// Command genmock writes a deterministic mock data set (stations,
// observations, fire records, and the manifest that produced them) for
// downstream API and dashboard test suites. It runs the real seeder against
// an in-memory store under a frozen clock.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock
//	go run ./cmd/genmock -out data/mock -seed 7 -start 2024-08-01 -end 2024-08-15
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"sort"
	"time"

	"github.com/couchcryptid/weather-seeder/internal/domain"
	"github.com/couchcryptid/weather-seeder/internal/fixture"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	def := fixture.DefaultManifest()

	out := flag.String("out", "", "output directory for the fixture files")
	seed := flag.Int64("seed", def.Seed, "random seed (non-zero)")
	start := flag.String("start", def.Start, "first day, YYYY-MM-DD")
	end := flag.String("end", def.End, "day after the last day, YYYY-MM-DD")
	stations := flag.Int("stations", def.Stations, "number of catalog stations")
	perDay := flag.Int("per-day", def.ObservationsPerDay, "observations per station per day (1-24)")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	m := def
	m.Seed = *seed
	m.Start = *start
	m.End = *end
	m.Stations = *stations
	m.ObservationsPerDay = *perDay
	// Generated-at follows the range so created_at stays after the data.
	if r, err := m.Range(); err == nil {
		m.GeneratedAt = r.End.Add(6 * time.Hour)
	}

	set, err := fixture.Generate(context.Background(), m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return fmt.Errorf("generating fixture: %w", err)
	}
	if err := set.Write(*out); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s (%d stations, %d observations, %d fires)",
		*out, len(set.Stations), len(set.Observations), len(set.Fires))

	printStats(set)
	return nil
}

type count struct {
	key string
	n   int
}

func sortedCounts(m map[string]int) []count {
	out := make([]count, 0, len(m))
	for k, n := range m {
		out = append(out, count{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].key < out[j].key
	})
	return out
}

func printStats(set *fixture.Set) {
	fmt.Println("\n=== Stats for updating test assertions ===")

	active := domain.ActiveStations(set.Stations)
	fmt.Printf("Stations: %d (%d active)\n", len(set.Stations), len(active))
	for _, st := range set.Stations {
		if !st.Active {
			fmt.Printf("  inactive: %s\n", st.ID)
		}
	}

	byStation := map[string]int{}
	byCondition := map[string]int{}
	for _, row := range set.Observations {
		byStation[fmt.Sprint(row["station_id"])]++
		byCondition[fmt.Sprint(row["weather_condition"])]++
	}
	fmt.Printf("Observations: %d\n", len(set.Observations))
	for _, c := range sortedCounts(byStation) {
		fmt.Printf("  %s=%d\n", c.key, c.n)
	}
	fmt.Print("By condition:")
	for _, c := range sortedCounts(byCondition) {
		fmt.Printf(" %s=%d", c.key, c.n)
	}
	fmt.Println()

	byRegion := map[string]int{}
	byCause := map[string]int{}
	for _, row := range set.Fires {
		byRegion[fmt.Sprint(row["state_province"])]++
		byCause[fmt.Sprint(row["cause"])]++
	}
	fmt.Printf("Fires: %d\n", len(set.Fires))
	fmt.Print("By region:")
	for _, c := range sortedCounts(byRegion) {
		fmt.Printf(" %s=%d", c.key, c.n)
	}
	fmt.Println()
	fmt.Print("By cause:")
	for _, c := range sortedCounts(byCause) {
		fmt.Printf(" %s=%d", c.key, c.n)
	}
	fmt.Println()

	if len(set.Fires) > 0 {
		first := set.Fires[0]
		fmt.Printf("\nFirst fire: id=%v name=%q date=%v size=%v ha\n",
			first["fire_id"], first["fire_name"], first["fire_date"], first["size_hectares"])
	}
}
