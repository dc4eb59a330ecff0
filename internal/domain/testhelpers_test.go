package domain

import (
	"io"
	"log/slog"
	"time"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStations(n int) []Station {
	return DefaultCatalog().Stations(NewRand(1), n, 0, testNow)
}

func mustRange(start, end string) DateRange {
	r, err := ParseDateRange(start, end)
	if err != nil {
		panic(err)
	}
	return r
}
