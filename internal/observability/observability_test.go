package observability

import (
	"log/slog"
	"testing"

	"github.com/couchcryptid/weather-seeder/internal/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Level(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "text"})

	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelWarn))
}

func TestNewLogger_InstallsServiceLoggerAsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "info", LogFormat: "json"})

	assert.Same(t, logger, slog.Default())
}

func TestNewMetricsForTesting(t *testing.T) {
	m := NewMetricsForTesting()

	m.RowsAppended.WithLabelValues("weather_observations").Add(3)
	m.StationsReconciled.WithLabelValues("inserted").Inc()

	assert.InDelta(t, 3, testutil.ToFloat64(m.RowsAppended.WithLabelValues("weather_observations")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StationsReconciled.WithLabelValues("inserted")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.SeederRunning), 0)
}
