package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidDateRange is returned when a range does not start before it ends.
	ErrInvalidDateRange = errors.New("invalid date range: start must be before end")

	// ErrInvalidCadence is returned when observations per day is outside [1, 24].
	ErrInvalidCadence = errors.New("invalid cadence: observations per day must be between 1 and 24")
)

const day = 24 * time.Hour

// DateRange is the half-open interval [Start, End) of days to generate.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// LastDays returns the n whole UTC days before the day containing now, so
// every generated day starts at midnight.
func LastDays(now time.Time, n int) DateRange {
	end := now.UTC().Truncate(day)
	return DateRange{Start: end.Add(-time.Duration(n) * day), End: end}
}

// ParseDateRange parses YYYY-MM-DD bounds in UTC and validates them.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse start date: %w", err)
	}
	e, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse end date: %w", err)
	}
	r := DateRange{Start: s, End: e}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate rejects empty and inverted ranges.
func (r DateRange) Validate() error {
	if !r.Start.Before(r.End) {
		return fmt.Errorf("%w: %s >= %s", ErrInvalidDateRange,
			r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
	}
	return nil
}

// Days returns the start of every day in the range, stepping 24h from Start.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; d.Before(r.End); d = d.Add(day) {
		days = append(days, d)
	}
	return days
}

func validateCadence(perDay int) error {
	if perDay < 1 || perDay > 24 {
		return fmt.Errorf("%w: got %d", ErrInvalidCadence, perDay)
	}
	return nil
}
