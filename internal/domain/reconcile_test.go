package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idSet(stations []Station) map[string]struct{} {
	set := make(map[string]struct{}, len(stations))
	for _, s := range stations {
		set[s.ID] = struct{}{}
	}
	return set
}

func TestReconcile_FirstRunInsertsEverything(t *testing.T) {
	generated := testStations(5)

	plan := Reconcile(generated, nil, testNow)

	require.Len(t, plan.ToInsert, 5)
	assert.Empty(t, plan.ToUpdate)
	for _, s := range plan.ToInsert {
		assert.Equal(t, testNow, s.CreatedAt)
		assert.Nil(t, s.UpdatedAt)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	first := Reconcile(testStations(5), nil, testNow)
	persisted := idSet(first.ToInsert)

	later := testNow.Add(24 * time.Hour)
	for range 3 {
		plan := Reconcile(testStations(5), persisted, later)
		assert.Empty(t, plan.ToInsert)
		require.Len(t, plan.ToUpdate, 5)
		for _, s := range plan.ToUpdate {
			require.NotNil(t, s.UpdatedAt)
			assert.Equal(t, later, *s.UpdatedAt)
			assert.True(t, s.CreatedAt.IsZero())
		}
	}
}

func TestReconcile_MixedBatch(t *testing.T) {
	generated := testStations(4)
	persisted := idSet(generated[:2])

	plan := Reconcile(generated, persisted, testNow)

	assert.Equal(t, []string{generated[2].ID, generated[3].ID}, stationIDs(plan.ToInsert))
	assert.Equal(t, []string{generated[0].ID, generated[1].ID}, stationIDs(plan.ToUpdate))
	assert.False(t, plan.Empty())
}

func TestReconcile_DuplicateIDsKeepFirst(t *testing.T) {
	generated := testStations(2)
	dup := generated[0]
	dup.Name = "Impostor"
	generated = append(generated, dup)

	plan := Reconcile(generated, nil, testNow)

	require.Len(t, plan.ToInsert, 2)
	assert.Equal(t, "Berlin Tempelhof", plan.ToInsert[0].Name)
}

func TestReconcile_EmptyInput(t *testing.T) {
	plan := Reconcile(nil, map[string]struct{}{"WS_X_001": {}}, testNow)
	assert.True(t, plan.Empty())
}

func TestDedupe(t *testing.T) {
	t1 := testNow
	t2 := testNow.Add(time.Hour)
	t3 := testNow.Add(2 * time.Hour)

	stations := []Station{
		{ID: "a", Name: "Berlin Tempelhof", Location: "POINT(13.4021 52.4675)", CreatedAt: t1},
		{ID: "b", Name: "Berlin Tempelhof", Location: "POINT(13.40210 52.46750)", CreatedAt: t3},
		{ID: "c", Name: "Munich Airport", Location: "POINT(11.7861 48.3538)", CreatedAt: t1},
		{ID: "d", Name: "Berlin Tempelhof", Location: "POINT(13.4021 52.4675)", CreatedAt: t2},
		{ID: "e", Name: "Berlin Tempelhof", Location: "POINT(1 1)", CreatedAt: t1},
	}

	losers := Dedupe(stations)

	assert.Equal(t, []string{"a", "d"}, stationIDs(losers))
}

func TestDedupe_TieKeepsFirstSeen(t *testing.T) {
	stations := []Station{
		{ID: "first", Name: "Hamburg Harbor", Location: "POINT(9.9872 53.5488)", CreatedAt: testNow},
		{ID: "second", Name: "Hamburg Harbor", Location: "POINT(9.9872 53.5488)", CreatedAt: testNow},
	}

	assert.Equal(t, []string{"second"}, stationIDs(Dedupe(stations)))
}

func TestDedupe_NoDuplicates(t *testing.T) {
	assert.Empty(t, Dedupe(testStations(12)))
}

func stationIDs(stations []Station) []string {
	out := make([]string, len(stations))
	for i, s := range stations {
		out[i] = s.ID
	}
	return out
}
