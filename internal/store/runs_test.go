package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevation-marker/internal/batch"
	"elevation-marker/internal/document"
	"elevation-marker/internal/matcher"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleReport(id string, started time.Time) *batch.Report {
	return &batch.Report{
		RunID:     id,
		Started:   started,
		Finished:  started.Add(2 * time.Second),
		Mode:      "template",
		Direction: matcher.TokenLeft,
		Side:      "left",
		Views: []batch.ViewSummary{
			{ID: "S-01", Name: "Section A-A", Attempted: 2, Succeeded: 1, Committed: true},
		},
		Results: []batch.Result{
			{ViewID: "S-01", ViewName: "Section A-A", ElementID: "W-101", Approach: "exact-reference", Handle: "h1", Success: true},
			{ViewID: "S-01", ViewName: "Section A-A", ElementID: "W-102", Kind: document.KindReference, Error: "create: gone", Diagnostics: []string{"transform-matched: create: gone"}},
		},
		Diagnostics: []string{"view S-01: prepare: locked"},
		Matches: []matcher.Outcome{
			{ElementID: "W-102", ViewID: "S-01", BestAlignment: -0.5, FaceFound: true, Note: matcher.NoteAntiAligned,
				Evaluations: []matcher.Evaluation{{Index: 0, Alignment: -0.5}, {Index: 1, Alignment: -1}}},
		},
	}
}

func TestSaveRun_RoundTrip(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, db.SaveRun(ctx, "facade.yaml", sampleReport("run-1", started)))

	run, err := db.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "facade.yaml", run.Scene)
	assert.Equal(t, "template", run.Mode)
	assert.Equal(t, matcher.TokenLeft, run.Direction)
	assert.Equal(t, 1, run.Views)
	assert.Equal(t, 2, run.Attempts)
	assert.Equal(t, 1, run.Placed)
	assert.Equal(t, []string{"view S-01: prepare: locked"}, run.Diagnostics)
	assert.True(t, run.StartedAt.Equal(started))

	attempts, err := db.Attempts(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.True(t, attempts[0].Success)
	assert.Equal(t, document.Handle("h1"), attempts[0].Handle)
	assert.Equal(t, document.KindReference, attempts[1].Kind)
	assert.Equal(t, []string{"transform-matched: create: gone"}, attempts[1].Diagnostics)

	matches, err := db.Matches(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, matcher.NoteAntiAligned, matches[0].Note)
	assert.Len(t, matches[0].Evaluations, 2)
	assert.Equal(t, -0.5, matches[0].BestAlignment)
}

func TestListRuns_NewestFirst(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, db.SaveRun(ctx, "s.yaml", sampleReport(id, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := db.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)

	all, err := db.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSaveRun_DuplicateIDRollsBack(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	rep := sampleReport("dup", time.Now())

	require.NoError(t, db.SaveRun(ctx, "s.yaml", rep))
	assert.Error(t, db.SaveRun(ctx, "s.yaml", rep))

	attempts, err := db.Attempts(ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

func TestGetRun_NotFound(t *testing.T) {
	db := openTemp(t)
	_, err := db.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
