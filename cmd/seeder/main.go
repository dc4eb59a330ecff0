// Command seeder populates a station store with the German weather-station
// catalog and appends synthetic observations and fire records to a sink.
//
// Usage:
//
//	seeder -mode all -start 2024-06-01 -end 2024-07-01
//
// Without -start/-end the last DAYS_OF_DATA days are generated. When
// SEED_SCHEDULE is set the seeder stays up, serves /healthz, /readyz,
// /metrics and /summary, and reruns on the cron schedule.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/weather-seeder/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-seeder/internal/adapter/kafka"
	"github.com/couchcryptid/weather-seeder/internal/adapter/mapbox"
	"github.com/couchcryptid/weather-seeder/internal/adapter/memory"
	"github.com/couchcryptid/weather-seeder/internal/adapter/postgres"
	"github.com/couchcryptid/weather-seeder/internal/config"
	"github.com/couchcryptid/weather-seeder/internal/domain"
	"github.com/couchcryptid/weather-seeder/internal/observability"
	"github.com/couchcryptid/weather-seeder/internal/pipeline"
	"github.com/couchcryptid/weather-seeder/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	modeFlag := flag.String("mode", string(pipeline.ModeAll), "run mode: all, stations, observations, cleanup, summary, clear")
	startFlag := flag.String("start", "", "first day to generate, YYYY-MM-DD (default: DAYS_OF_DATA days ago)")
	endFlag := flag.String("end", "", "day after the last day to generate, YYYY-MM-DD (default: today)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-mode MODE] [-start YYYY-MM-DD -end YYYY-MM-DD]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)

	mode, err := pipeline.ParseMode(*modeFlag)
	if err != nil {
		logger.Error("invalid mode", "error", err)
		os.Exit(2)
	}

	ranges, err := newRangeFunc(*startFlag, *endFlag, cfg.DaysOfData)
	if err != nil {
		logger.Error("invalid date range", "error", err)
		os.Exit(2)
	}

	if err := run(cfg, logger, mode, ranges); err != nil {
		logger.Error("seeder failed", "error", err)
		os.Exit(1)
	}
}

// rangeFunc returns the date range for the next run.
type rangeFunc func() domain.DateRange

// newRangeFunc fixes the range when both bounds are given; otherwise each run
// covers the whole UTC days before today.
func newRangeFunc(start, end string, days int) (rangeFunc, error) {
	if start == "" && end == "" {
		return func() domain.DateRange { return domain.LastDays(domain.Now(), days) }, nil
	}
	if start == "" || end == "" {
		return nil, errors.New("-start and -end must be given together")
	}
	r, err := domain.ParseDateRange(start, end)
	if err != nil {
		return nil, err
	}
	return func() domain.DateRange { return r }, nil
}

func run(cfg *config.Config, logger *slog.Logger, mode pipeline.Mode, ranges rangeFunc) error {
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close(logger)

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	seeder := pipeline.New(b.store, b.sink, geocoder, logger, metrics, pipeline.Options{
		Seed:                cfg.Seed,
		NumStations:         cfg.NumStations,
		InactiveProbability: cfg.InactiveStationProbability,
		Observations: domain.ObservationOptions{
			PerDay:      cfg.ObservationsPerDay,
			MissingRate: cfg.MissingDataProbability,
		},
		FiresEnabled: cfg.FiresEnabled,
		Workers:      cfg.Workers,
		BatchSize:    cfg.BatchSize,
	})

	if cfg.SeedSchedule == "" {
		return seeder.Run(ctx, mode, ranges())
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, seeder, b.store, prometheus.DefaultGatherer, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	sched := scheduler.New(cfg.SeedSchedule, 0, func(ctx context.Context) error {
		return seeder.Run(ctx, mode, ranges())
	}, logger)
	if err := sched.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	sched.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

type backends struct {
	store   pipeline.StationStore
	sink    pipeline.RecordSink
	closers map[string]io.Closer
}

func (b *backends) close(logger *slog.Logger) {
	for name, c := range b.closers {
		if err := c.Close(); err != nil {
			logger.Error("close error", "backend", name, "error", err)
		}
	}
}

// openBackends builds the station store and record sink named by STORE and
// SINK. A memory store doubles as the memory sink, and postgres is opened
// once when both use it.
func openBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backends, error) {
	b := &backends{closers: make(map[string]io.Closer)}

	var pg *postgres.Store
	if cfg.Store == config.BackendPostgres || cfg.Sink == config.BackendPostgres {
		var err error
		pg, err = postgres.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		b.closers["postgres"] = pg
		if err := pg.EnsureSchema(ctx); err != nil {
			b.close(logger)
			return nil, err
		}
	}

	mem := memory.NewStore()
	switch cfg.Store {
	case config.BackendPostgres:
		b.store = pg
	default:
		b.store = mem
	}

	switch cfg.Sink {
	case config.BackendPostgres:
		b.sink = pg
	case config.BackendKafka:
		w := kafkaadapter.NewWriter(cfg, logger)
		b.closers["kafka"] = w
		b.sink = w
	default:
		b.sink = mem
	}

	logger.Info("backends ready", "store", cfg.Store, "sink", cfg.Sink)
	return b, nil
}
