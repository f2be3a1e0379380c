package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func record(runID, artifact, state string, at time.Time) Record {
	return Record{
		RunID:      runID,
		Artifact:   artifact,
		Suite:      "TypographyTest",
		Case:       "label",
		Variant:    "light",
		State:      state,
		Duration:   25 * time.Millisecond,
		RecordedAt: at,
	}
}

func TestStore_RecordAndRunResults(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	now := time.Now()

	require.NoError(t, store.Record(ctx, record("run-1", "TypographyTest_label_light", StateSuccess, now)))
	require.NoError(t, store.Record(ctx, record("run-1", "TypographyTest_label_dark", "ComparisonFailed", now)))

	results, err := store.RunResults(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// ordered by artifact
	assert.Equal(t, "TypographyTest_label_dark", results[0].Artifact)
	assert.Equal(t, "ComparisonFailed", results[0].State)
	assert.Equal(t, "TypographyTest_label_light", results[1].Artifact)
	assert.Equal(t, 25*time.Millisecond, results[1].Duration)
	assert.Equal(t, now.UnixNano(), results[1].RecordedAt.UnixNano())
}

func TestStore_RecordReplacesWithinRun(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	now := time.Now()

	require.NoError(t, store.Record(ctx, record("run-1", "A_b_light", "ComparisonFailed", now)))
	require.NoError(t, store.Record(ctx, record("run-1", "A_b_light", StateSuccess, now.Add(time.Second))))

	results, err := store.RunResults(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StateSuccess, results[0].State)
}

func TestStore_SameArtifactFromDifferentTestsIsKept(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	now := time.Now()

	first := record("run-1", "<unresolved>_<unresolved>_light", "IdentityResolutionFailure", now)
	first.Test = "TestHeader/light"
	second := record("run-1", "<unresolved>_<unresolved>_light", "IdentityResolutionFailure", now)
	second.Test = "TestFooter/light"
	require.NoError(t, store.Record(ctx, first))
	require.NoError(t, store.Record(ctx, second))

	results, err := store.RunResults(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "TestFooter/light", results[0].Test)
	assert.Equal(t, "TestHeader/light", results[1].Test)

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Len(t, latest, 2)
}

func TestStore_RecordValidation(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	assert.Error(t, store.Record(ctx, Record{Artifact: "x"}))
	assert.Error(t, store.Record(ctx, Record{RunID: "run"}))

	var nilStore *Store
	assert.Error(t, nilStore.Record(ctx, record("r", "a", StateSuccess, time.Now())))
}

func TestStore_LatestAndRuns(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	t0 := time.Now().Add(-time.Hour)
	t1 := t0.Add(time.Minute)

	require.NoError(t, store.Record(ctx, record("run-1", "S_a_light", StateSuccess, t0)))
	require.NoError(t, store.Record(ctx, record("run-1", "S_b_light", StateSuccess, t0)))
	require.NoError(t, store.Record(ctx, record("run-2", "S_a_light", "ComparisonFailed", t1)))

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "run-2", latest[0].RunID)
	assert.Equal(t, "ComparisonFailed", latest[0].State)
	assert.Equal(t, "run-1", latest[1].RunID)

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, RunSummary{RunID: "run-2", StartedAt: time.Unix(0, t1.UnixNano()), Total: 1, Failed: 1}, runs[0])
	assert.Equal(t, 2, runs[1].Total)
	assert.Equal(t, 0, runs[1].Failed)

	runID, err := store.LatestRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", runID)
}

func TestStore_LatestRunIDEmpty(t *testing.T) {
	runID, err := openTestStore(t).LatestRunID(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runID)
}
