package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestSetClock(t *testing.T) {
	local := time.Date(2024, 6, 1, 14, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	fake := clockwork.NewFakeClockAt(local)
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, testNow, Now())
	assert.Equal(t, time.UTC, Now().Location())

	fake.Advance(time.Hour)
	assert.Equal(t, testNow.Add(time.Hour), Now())
}
