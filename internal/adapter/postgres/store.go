// Package postgres implements the station store and record sink on
// PostgreSQL via lib/pq. Locations are stored as WKT text and timestamps as
// timestamptz.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/weather-seeder/internal/domain"
	"github.com/lib/pq"
)

const (
	connectAttempts   = 5
	initialBackoff    = 200 * time.Millisecond
	maxConnectBackoff = 5 * time.Second
)

// Store is a PostgreSQL-backed StationStore and RecordSink.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to dsn, waiting for the server with exponential backoff.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := waitForDB(ctx, db, logger); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, err
	}
	return New(db, logger), nil
}

// New wraps an existing connection pool.
func New(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func waitForDB(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	backoff := initialBackoff
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		logger.Warn("database not reachable", "attempt", attempt, "error", err)
		if attempt == connectAttempts || !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxConnectBackoff)
	}
	return fmt.Errorf("ping database: %w", err)
}

const schema = `
CREATE TABLE IF NOT EXISTS weather_stations (
	station_id       TEXT PRIMARY KEY,
	station_name     TEXT NOT NULL,
	location         TEXT NOT NULL,
	elevation_meters DOUBLE PRECISION NOT NULL,
	country          TEXT NOT NULL,
	state_province   TEXT NOT NULL,
	city             TEXT NOT NULL,
	active           BOOLEAN NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS weather_observations (
	observation_id         UUID PRIMARY KEY,
	station_id             TEXT NOT NULL,
	timestamp              TIMESTAMPTZ NOT NULL,
	location               TEXT NOT NULL,
	temperature_celsius    DOUBLE PRECISION,
	humidity_percent       DOUBLE PRECISION,
	pressure_hpa           DOUBLE PRECISION,
	wind_speed_ms          DOUBLE PRECISION,
	wind_direction_degrees DOUBLE PRECISION,
	precipitation_mm       DOUBLE PRECISION,
	visibility_km          DOUBLE PRECISION,
	weather_condition      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS fire_records (
	fire_id          BIGINT NOT NULL,
	fire_name        TEXT NOT NULL,
	location         TEXT NOT NULL,
	fire_date        TIMESTAMPTZ NOT NULL,
	containment_date TIMESTAMPTZ NOT NULL,
	size_hectares    DOUBLE PRECISION,
	cause            TEXT NOT NULL,
	status           TEXT NOT NULL,
	country          TEXT,
	state_province   TEXT,
	city             TEXT
);`

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// ListStationIDs returns the set of persisted station IDs.
func (s *Store) ListStationIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT station_id FROM weather_stations`)
	if err != nil {
		return nil, fmt.Errorf("query station ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan station id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// ListStations returns all stations ordered by ID.
func (s *Store) ListStations(ctx context.Context) ([]domain.Station, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT station_id, station_name, location, elevation_meters, country,
		       state_province, city, active, created_at, updated_at
		FROM weather_stations
		ORDER BY station_id`)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	defer rows.Close()

	var stations []domain.Station
	for rows.Next() {
		var st domain.Station
		var updated sql.NullTime
		if err := rows.Scan(&st.ID, &st.Name, &st.Location, &st.ElevationM, &st.Country,
			&st.Region, &st.City, &st.Active, &st.CreatedAt, &updated); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		st.CreatedAt = st.CreatedAt.UTC()
		if updated.Valid {
			t := updated.Time.UTC()
			st.UpdatedAt = &t
		}
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

// InsertStations writes new stations in one multi-row INSERT.
func (s *Store) InsertStations(ctx context.Context, stations []domain.Station) error {
	if len(stations) == 0 {
		return nil
	}
	rows := make([]domain.Row, len(stations))
	for i, st := range stations {
		rows[i] = domain.StationRow(st)
	}
	query, args := insertQuery(domain.StationsTable, rows)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %d stations: %w", len(stations), err)
	}
	return nil
}

// stationUpdateColumns are the generated fields merged on update. created_at
// is left alone.
var stationUpdateColumns = []string{
	"station_id", "station_name", "location", "elevation_meters",
	"country", "state_province", "city", "active", "updated_at",
}

// UpdateStations merges the generated fields into existing rows in a single
// UPDATE ... FROM (VALUES ...) inside a transaction. The transaction is
// rolled back if any station is missing.
func (s *Store) UpdateStations(ctx context.Context, stations []domain.Station) error {
	if len(stations) == 0 {
		return nil
	}

	table := domain.Table{Name: domain.StationsTable.Name, Columns: stationUpdateColumns}
	args := make([]any, 0, len(stations)*len(table.Columns))
	for _, st := range stations {
		args = append(args, table.Values(domain.StationRow(st))...)
	}

	query := fmt.Sprintf(`
		UPDATE weather_stations AS t SET
			station_name     = v.station_name,
			location         = v.location,
			elevation_meters = v.elevation_meters::double precision,
			country          = v.country,
			state_province   = v.state_province,
			city             = v.city,
			active           = v.active::boolean,
			updated_at       = v.updated_at::timestamptz
		FROM (VALUES %s) AS v(%s)
		WHERE t.station_id = v.station_id`,
		placeholders(len(stations), len(table.Columns)), strings.Join(table.Columns, ", "))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %d stations: %w", len(stations), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update stations rows affected: %w", err)
	}
	if int(n) != len(stations) {
		return fmt.Errorf("update stations: matched %d of %d rows", n, len(stations))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// DeleteStations removes stations by ID.
func (s *Store) DeleteStations(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM weather_stations WHERE station_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("delete %d stations: %w", len(ids), err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.logger.Debug("stations deleted", "requested", len(ids), "deleted", n)
	}
	return nil
}

// Append inserts rows into the table in one multi-row INSERT.
func (s *Store) Append(ctx context.Context, table domain.Table, rows []domain.Row) error {
	if len(rows) == 0 {
		return nil
	}
	query, args := insertQuery(table, rows)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %d rows into %s: %w", len(rows), table.Name, err)
	}
	return nil
}

// Clear deletes every observation, fire and station in one transaction,
// children first.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, table := range []domain.Table{domain.ObservationsTable, domain.FiresTable, domain.StationsTable} {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+table.Name)
		if err != nil {
			return fmt.Errorf("clear %s: %w", table.Name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			s.logger.Debug("table cleared", "table", table.Name, "deleted", n)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}

// Summary counts stations and appended records and reports the station
// creation and observation time spans.
func (s *Store) Summary(ctx context.Context) (domain.Summary, error) {
	var sum domain.Summary
	var oldest, newest, first, last sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM weather_stations),
			(SELECT COUNT(*) FROM weather_stations WHERE active),
			(SELECT COUNT(DISTINCT station_id) FROM weather_observations),
			(SELECT COUNT(*) FROM weather_observations),
			(SELECT COUNT(*) FROM fire_records),
			(SELECT MIN(created_at) FROM weather_stations),
			(SELECT MAX(created_at) FROM weather_stations),
			(SELECT MIN(timestamp) FROM weather_observations),
			(SELECT MAX(timestamp) FROM weather_observations)`,
	).Scan(&sum.Stations, &sum.ActiveStations, &sum.StationsWithData, &sum.Observations, &sum.Fires,
		&oldest, &newest, &first, &last)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("query summary: %w", err)
	}
	sum.OldestStation = nullTime(oldest)
	sum.NewestStation = nullTime(newest)
	sum.FirstObservation = nullTime(first)
	sum.LastObservation = nullTime(last)
	return sum, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func insertQuery(table domain.Table, rows []domain.Row) (string, []any) {
	args := make([]any, 0, len(rows)*len(table.Columns))
	for _, r := range rows {
		args = append(args, table.Values(r)...)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table.Name, strings.Join(table.Columns, ", "), placeholders(len(rows), len(table.Columns)))
	return query, args
}

// placeholders renders "($1, $2), ($3, $4)" for rows x cols parameters.
func placeholders(rows, cols int) string {
	var b strings.Builder
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := 0; c < cols; c++ {
			if c > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", n)
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}
