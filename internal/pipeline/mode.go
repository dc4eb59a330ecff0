package pipeline

import (
	"errors"
	"fmt"
)

// ErrUnknownMode is returned for a run mode the seeder does not support.
var ErrUnknownMode = errors.New("unknown mode")

// Mode selects what a seeding run does.
type Mode string

const (
	ModeAll          Mode = "all"
	ModeStations     Mode = "stations"
	ModeObservations Mode = "observations"
	ModeCleanup      Mode = "cleanup"
	ModeSummary      Mode = "summary"
	ModeClear        Mode = "clear"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeAll, ModeStations, ModeObservations, ModeCleanup, ModeSummary, ModeClear}

// ParseMode validates s as a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// generates reports whether the mode synthesizes observations and fires.
func (m Mode) generates() bool {
	return m == ModeAll || m == ModeObservations
}
