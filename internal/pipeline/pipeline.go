package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weather-seeder/internal/domain"
	"github.com/couchcryptid/weather-seeder/internal/observability"
	"golang.org/x/sync/errgroup"
)

// StationStore persists weather stations.
type StationStore interface {
	ListStationIDs(ctx context.Context) (map[string]struct{}, error)
	ListStations(ctx context.Context) ([]domain.Station, error)
	InsertStations(ctx context.Context, stations []domain.Station) error
	// UpdateStations merges the generated fields into existing rows,
	// keeping their created_at.
	UpdateStations(ctx context.Context, stations []domain.Station) error
	DeleteStations(ctx context.Context, ids []string) error
	Summary(ctx context.Context) (domain.Summary, error)
	// Clear removes every station, observation and fire the store holds.
	Clear(ctx context.Context) error
}

// RecordSink receives append-only observation and fire rows.
type RecordSink interface {
	Append(ctx context.Context, table domain.Table, rows []domain.Row) error
}

// Clearer is implemented by sinks that can drop what they hold. Sinks
// without it, such as a topic, are left untouched by clear mode.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Options control what a run generates.
type Options struct {
	// Seed drives every random draw. Zero picks a time-based seed per run.
	Seed                int64
	Catalog             domain.Catalog
	NumStations         int
	InactiveProbability float64
	Observations        domain.ObservationOptions
	FiresEnabled        bool
	Workers             int
	BatchSize           int
}

// Seeder orchestrates station reconciliation and record generation.
type Seeder struct {
	store    StationStore
	sink     RecordSink
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
	opts     Options
	ready    atomic.Bool
	runs     atomic.Int64
}

// New creates a Seeder. Pass a nil geocoder to keep city-based fire names.
func New(store StationStore, sink RecordSink, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Seeder {
	if opts.Catalog == nil {
		opts.Catalog = domain.DefaultCatalog()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	return &Seeder{
		store:    store,
		sink:     sink,
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
	}
}

// CheckReadiness returns nil once a run has completed successfully,
// or an error describing why the service is not yet ready.
func (s *Seeder) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("seeder has not completed a run yet")
	}
	return nil
}

// Run executes one seeding run in the given mode. Generating modes reject an
// invalid range before touching the store. Errors are returned as-is; the
// run is not retried.
func (s *Seeder) Run(ctx context.Context, mode Mode, r domain.DateRange) error {
	start := time.Now()
	s.metrics.SeederRunning.Set(1)
	defer s.metrics.SeederRunning.Set(0)

	err := s.run(ctx, mode, r)
	if err != nil {
		s.metrics.RunFailures.WithLabelValues(string(mode)).Inc()
		s.logger.Error("seeding run failed", "mode", mode, "error", err)
		return err
	}

	elapsed := time.Since(start)
	s.metrics.RunDuration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
	s.ready.Store(true)
	s.logger.Info("seeding run complete", "mode", mode, "duration", elapsed)
	return nil
}

func (s *Seeder) run(ctx context.Context, mode Mode, r domain.DateRange) error {
	if mode.generates() {
		if err := r.Validate(); err != nil {
			return err
		}
		if err := s.opts.Observations.Validate(); err != nil {
			return err
		}
	}

	now := domain.Now().UnixNano()
	seed := s.opts.Seed
	if seed == 0 {
		seed = now
	}
	// Record IDs are keyed per run so a fixed seed replays the same samples
	// without reusing observation IDs across runs.
	runKey := now + s.runs.Add(1)
	rng := domain.NewRand(seed).ForRun(runKey)
	s.logger.Info("seeding run started", "mode", mode, "seed", seed,
		"start", r.Start.Format(time.DateOnly), "end", r.End.Format(time.DateOnly))

	switch mode {
	case ModeAll:
		stations, err := s.SeedStations(ctx, rng)
		if err != nil {
			return err
		}
		return s.Generate(ctx, rng, stations, r)
	case ModeStations:
		_, err := s.SeedStations(ctx, rng)
		return err
	case ModeObservations:
		stations, err := s.store.ListStations(ctx)
		if err != nil {
			return fmt.Errorf("list stations: %w", err)
		}
		if len(stations) == 0 {
			s.logger.Warn("no persisted stations; run stations mode first")
			return nil
		}
		return s.Generate(ctx, rng, stations, r)
	case ModeCleanup:
		return s.Cleanup(ctx)
	case ModeSummary:
		return s.Summarize(ctx)
	case ModeClear:
		return s.Clear(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// SeedStations builds the catalog stations and reconciles them with the
// store: unknown IDs are inserted, known IDs updated. It returns the
// generated stations.
func (s *Seeder) SeedStations(ctx context.Context, rng *domain.Rand) ([]domain.Station, error) {
	if err := s.opts.Catalog.Validate(); err != nil {
		return nil, err
	}

	now := domain.Now()
	generated := s.opts.Catalog.Stations(rng, s.opts.NumStations, s.opts.InactiveProbability, now)

	persisted, err := s.store.ListStationIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list station ids: %w", err)
	}

	plan := domain.Reconcile(generated, persisted, now)
	if len(plan.ToInsert) > 0 {
		if err := s.store.InsertStations(ctx, plan.ToInsert); err != nil {
			return nil, fmt.Errorf("insert stations: %w", err)
		}
		s.metrics.StationsReconciled.WithLabelValues("inserted").Add(float64(len(plan.ToInsert)))
	}
	if len(plan.ToUpdate) > 0 {
		if err := s.store.UpdateStations(ctx, plan.ToUpdate); err != nil {
			return nil, fmt.Errorf("update stations: %w", err)
		}
		s.metrics.StationsReconciled.WithLabelValues("updated").Add(float64(len(plan.ToUpdate)))
	}

	s.logger.Info("stations reconciled",
		"generated", len(generated),
		"inserted", len(plan.ToInsert),
		"updated", len(plan.ToUpdate),
		"active", len(domain.ActiveStations(generated)),
	)
	return generated, nil
}

// Generate synthesizes observations (and fires when enabled) for the active
// stations over r and appends them to the sink. The i-th active station
// draws its observations from rng.Child(i) and its fires from
// rng.FireChild(i), so the output is the same for any worker count.
func (s *Seeder) Generate(ctx context.Context, rng *domain.Rand, stations []domain.Station, r domain.DateRange) error {
	active := domain.ActiveStations(stations)
	days := r.Days()

	for _, st := range active {
		if _, ok := st.Point(); !ok {
			s.logger.Warn("malformed station location, using default coordinates",
				"station_id", st.ID, "location", st.Location)
		}
	}

	var (
		observations []domain.Observation
		fires        []domain.FireRecord
		ids          domain.FireIDCounter
		err          error
	)
	if s.opts.Workers == 1 {
		observations, fires, err = s.generateSerial(ctx, rng, active, r, &ids)
	} else {
		observations, fires, err = s.generateConcurrent(ctx, rng, active, days, &ids)
	}
	if err != nil {
		return err
	}

	for i := range fires {
		fires[i] = domain.NameFromGeocoding(ctx, fires[i], s.geocoder, s.logger)
	}

	s.metrics.RecordsGenerated.WithLabelValues("observations").Add(float64(len(observations)))
	s.metrics.RecordsGenerated.WithLabelValues("fires").Add(float64(len(fires)))
	s.logger.Info("records generated",
		"stations", len(active),
		"days", len(days),
		"observations", len(observations),
		"fires", len(fires),
	)

	if err := s.appendBatches(ctx, domain.ObservationsTable, domain.ObservationRows(observations)); err != nil {
		return err
	}
	if s.opts.FiresEnabled {
		if err := s.appendBatches(ctx, domain.FiresTable, domain.FireRows(fires)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) generateSerial(ctx context.Context, rng *domain.Rand, active []domain.Station, r domain.DateRange, ids *domain.FireIDCounter) ([]domain.Observation, []domain.FireRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	observations, err := domain.SynthesizeObservations(rng, active, r, s.opts.Observations)
	if err != nil {
		return nil, nil, err
	}
	if !s.opts.FiresEnabled {
		return observations, nil, nil
	}
	fires, err := domain.SimulateFires(rng, active, r, ids)
	if err != nil {
		return nil, nil, err
	}
	return observations, fires, nil
}

type stationOutput struct {
	observations []domain.Observation
	fires        []domain.FireRecord
}

// generateConcurrent fans the active stations out over the worker pool and
// numbers the fires once every station is done.
func (s *Seeder) generateConcurrent(ctx context.Context, rng *domain.Rand, active []domain.Station, days []time.Time, ids *domain.FireIDCounter) ([]domain.Observation, []domain.FireRecord, error) {
	results := make([]stationOutput, len(active))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, st := range active {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out := stationOutput{
				observations: domain.SynthesizeStationObservations(rng.Child(i), st, days, s.opts.Observations),
			}
			if s.opts.FiresEnabled {
				out.fires = domain.SimulateStationFires(rng.FireChild(i), st, days)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var observations []domain.Observation
	var fires []domain.FireRecord
	for _, out := range results {
		observations = append(observations, out.observations...)
		fires = append(fires, out.fires...)
	}
	domain.AssignFireIDs(fires, ids)
	return observations, fires, nil
}

// appendBatches hands rows to the sink in chunks of BatchSize.
func (s *Seeder) appendBatches(ctx context.Context, table domain.Table, rows []domain.Row) error {
	for start := 0; start < len(rows); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(rows))
		batch := rows[start:end]

		if err := s.sink.Append(ctx, table, batch); err != nil {
			return fmt.Errorf("append %s rows [%d:%d]: %w", table.Name, start, end, err)
		}
		s.metrics.BatchSize.Observe(float64(len(batch)))
		s.metrics.RowsAppended.WithLabelValues(table.Name).Add(float64(len(batch)))
		s.logger.Debug("batch appended", "table", table.Name, "rows", len(batch))
	}
	return nil
}

// Cleanup deletes duplicate stations, keeping the most recently created
// station of each (name, location) group.
func (s *Seeder) Cleanup(ctx context.Context) error {
	stations, err := s.store.ListStations(ctx)
	if err != nil {
		return fmt.Errorf("list stations: %w", err)
	}

	losers := domain.Dedupe(stations)
	if len(losers) == 0 {
		s.logger.Info("no duplicate stations found", "stations", len(stations))
		return nil
	}

	ids := make([]string, len(losers))
	for i, st := range losers {
		ids[i] = st.ID
	}
	if err := s.store.DeleteStations(ctx, ids); err != nil {
		return fmt.Errorf("delete stations: %w", err)
	}

	s.metrics.StationsReconciled.WithLabelValues("deleted").Add(float64(len(ids)))
	s.logger.Info("duplicate stations deleted", "deleted", len(ids), "remaining", len(stations)-len(ids))
	return nil
}

// Summarize logs the record counts and time spans held by the store.
func (s *Seeder) Summarize(ctx context.Context) error {
	sum, err := s.store.Summary(ctx)
	if err != nil {
		return fmt.Errorf("store summary: %w", err)
	}
	s.logger.Info("store summary",
		"stations", sum.Stations,
		"active_stations", sum.ActiveStations,
		"stations_with_data", sum.StationsWithData,
		"observations", sum.Observations,
		"fires", sum.Fires,
		"oldest_station", formatSpan(sum.OldestStation),
		"newest_station", formatSpan(sum.NewestStation),
		"first_observation", formatSpan(sum.FirstObservation),
		"last_observation", formatSpan(sum.LastObservation),
	)
	return nil
}

// Clear removes everything the store holds, and the sink's records when the
// sink is a separate Clearer.
func (s *Seeder) Clear(ctx context.Context) error {
	before, err := s.store.Summary(ctx)
	if err != nil {
		return fmt.Errorf("store summary: %w", err)
	}

	if c, ok := s.sink.(Clearer); ok && any(s.sink) != any(s.store) {
		if err := c.Clear(ctx); err != nil {
			return fmt.Errorf("clear sink: %w", err)
		}
	} else if !ok {
		s.logger.Warn("record sink cannot be cleared; only the store is cleared")
	}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}

	s.metrics.StationsReconciled.WithLabelValues("deleted").Add(float64(before.Stations))
	s.logger.Info("store cleared",
		"stations", before.Stations,
		"observations", before.Observations,
		"fires", before.Fires,
	)
	return nil
}

func formatSpan(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.Format(time.RFC3339)
}
