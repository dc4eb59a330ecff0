package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Backends accepted by STORE and SINK.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendKafka    = "kafka"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Store       string
	Sink        string
	DatabaseURL string

	KafkaBrokers           []string
	KafkaObservationsTopic string
	KafkaFiresTopic        string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Generation parameters.
	Seed                       int64
	NumStations                int
	DaysOfData                 int
	ObservationsPerDay         int
	MissingDataProbability     float64
	InactiveStationProbability float64
	FiresEnabled               bool
	Workers                    int

	BatchSize          int
	BatchFlushInterval time.Duration

	// SeedSchedule is a cron expression; empty means run once and exit.
	SeedSchedule string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first if present; variables
// already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeoutStr := sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s")
	mapboxTimeout, err2 := time.ParseDuration(mapboxTimeoutStr)
	if err2 != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	gen, err := parseGeneration()
	if err != nil {
		return nil, err
	}

	mapboxCacheSize := parseMapboxCacheSize()

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		Store:       sharedcfg.EnvOrDefault("STORE", BackendMemory),
		Sink:        sharedcfg.EnvOrDefault("SINK", BackendMemory),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		KafkaBrokers:           sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaObservationsTopic: sharedcfg.EnvOrDefault("KAFKA_OBSERVATIONS_TOPIC", "weather-observations"),
		KafkaFiresTopic:        sharedcfg.EnvOrDefault("KAFKA_FIRES_TOPIC", "fire-records"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		Seed:                       gen.seed,
		NumStations:                gen.numStations,
		DaysOfData:                 gen.days,
		ObservationsPerDay:         gen.perDay,
		MissingDataProbability:     gen.missing,
		InactiveStationProbability: gen.inactive,
		FiresEnabled:               gen.fires,
		Workers:                    gen.workers,

		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		SeedSchedule:       os.Getenv("SEED_SCHEDULE"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: mapboxCacheSize,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("invalid STORE %q: must be memory or postgres", c.Store)
	}
	switch c.Sink {
	case BackendMemory, BackendPostgres, BackendKafka:
	default:
		return fmt.Errorf("invalid SINK %q: must be memory, postgres or kafka", c.Sink)
	}

	if (c.Store == BackendPostgres || c.Sink == BackendPostgres) && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for the postgres backend")
	}
	if c.Sink == BackendKafka {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required")
		}
		if c.KafkaObservationsTopic == "" {
			return errors.New("KAFKA_OBSERVATIONS_TOPIC is required")
		}
		if c.KafkaFiresTopic == "" {
			return errors.New("KAFKA_FIRES_TOPIC is required")
		}
	}
	if c.MapboxEnabled && c.MapboxToken == "" {
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	return nil
}

type generation struct {
	seed        int64
	numStations int
	days        int
	perDay      int
	missing     float64
	inactive    float64
	fires       bool
	workers     int
}

func parseGeneration() (generation, error) {
	var g generation
	var err error

	if g.seed, err = strconv.ParseInt(sharedcfg.EnvOrDefault("SEED", "0"), 10, 64); err != nil {
		return g, errors.New("invalid SEED: must be an integer")
	}
	if g.numStations, err = parsePositiveInt("NUM_STATIONS", 8); err != nil {
		return g, err
	}
	if g.days, err = parsePositiveInt("DAYS_OF_DATA", 30); err != nil {
		return g, err
	}
	if g.perDay, err = parsePositiveInt("OBSERVATIONS_PER_DAY", 4); err != nil {
		return g, err
	}
	if g.perDay > 24 {
		return g, errors.New("invalid OBSERVATIONS_PER_DAY: must be between 1 and 24")
	}
	if g.missing, err = parseProbability("MISSING_DATA_PROBABILITY", 0.05); err != nil {
		return g, err
	}
	if g.inactive, err = parseProbability("INACTIVE_STATION_PROBABILITY", 0.1); err != nil {
		return g, err
	}
	if g.fires, err = strconv.ParseBool(sharedcfg.EnvOrDefault("FIRES_ENABLED", "true")); err != nil {
		return g, errors.New("invalid FIRES_ENABLED: must be a boolean")
	}
	if g.workers, err = parsePositiveInt("WORKERS", 4); err != nil {
		return g, err
	}
	return g, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, strconv.Itoa(def)))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseProbability(key string, def float64) (float64, error) {
	p, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, strconv.FormatFloat(def, 'f', -1, 64)), 64)
	if err != nil || p < 0 || p > 1 {
		return 0, fmt.Errorf("invalid %s: must be within [0, 1]", key)
	}
	return p, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
