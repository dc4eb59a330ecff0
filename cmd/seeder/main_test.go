package main

import (
	"testing"
	"time"

	"github.com/couchcryptid/weather-seeder/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRangeFunc_Trailing(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	domain.SetClock(clock)
	t.Cleanup(func() { domain.SetClock(nil) })

	ranges, err := newRangeFunc("", "", 30)
	require.NoError(t, err)

	r := ranges()
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), r.End)

	clock.Advance(24 * time.Hour)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), ranges().End, "each run recomputes the window")
}

func TestNewRangeFunc_TrailingFromAfternoon(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 30, 14, 30, 0, 0, time.UTC))
	domain.SetClock(clock)
	t.Cleanup(func() { domain.SetClock(nil) })

	ranges, err := newRangeFunc("", "", 30)
	require.NoError(t, err)

	r := ranges()
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), r.End)
	for _, d := range r.Days() {
		assert.Equal(t, 0, d.Hour(), d)
	}

	clock.Advance(6 * time.Hour)
	assert.Equal(t, r, ranges(), "same window until the next UTC midnight")
}

func TestNewRangeFunc_Fixed(t *testing.T) {
	ranges, err := newRangeFunc("2024-06-01", "2024-06-08", 30)
	require.NoError(t, err)

	r := ranges()
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Len(t, r.Days(), 7)
}

func TestNewRangeFunc_Errors(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{"missing end", "2024-06-01", ""},
		{"missing start", "", "2024-06-08"},
		{"inverted", "2024-06-08", "2024-06-01"},
		{"empty", "2024-06-01", "2024-06-01"},
		{"malformed", "06/01/2024", "2024-06-08"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newRangeFunc(tt.start, tt.end, 30)
			require.Error(t, err)
		})
	}
}

func TestNewRangeFunc_InvertedWrapsSentinel(t *testing.T) {
	_, err := newRangeFunc("2024-06-08", "2024-06-01", 30)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}
