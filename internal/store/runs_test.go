package store_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devops-trace/internal/models"
	"devops-trace/internal/store"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE runs (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL,
			work_item_count INTEGER NOT NULL DEFAULT 0,
			pull_request_count INTEGER NOT NULL DEFAULT 0,
			summary_file TEXT NOT NULL,
			details_file TEXT NOT NULL,
			diff_file TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	require.NoError(t, err)

	return db
}

func TestRunRepo_CreateAndGet(t *testing.T) {
	repo := store.NewRunRepo(newTestDB(t))

	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	created, err := repo.Create(&models.Run{
		StartedAt:        started,
		FinishedAt:       started.Add(2 * time.Minute),
		WorkItemCount:    12,
		PullRequestCount: 4,
		SummaryFile:      "results/summary_20240501_120200.json",
		DetailsFile:      "results/pr_details_20240501_120200.json",
		DiffFile:         "results/diff_stats_20240501_120200.json",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 12, created.WorkItemCount)
	assert.Equal(t, 4, created.PullRequestCount)
	assert.True(t, created.StartedAt.Equal(started))

	got, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
}

func TestRunRepo_GetByID_NotFound(t *testing.T) {
	repo := store.NewRunRepo(newTestDB(t))

	got, err := repo.GetByID("missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRunRepo_GetAll_NewestFirst(t *testing.T) {
	repo := store.NewRunRepo(newTestDB(t))

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.Create(&models.Run{
			StartedAt:   base.Add(time.Duration(i) * time.Hour),
			FinishedAt:  base.Add(time.Duration(i)*time.Hour + time.Minute),
			SummaryFile: "s", DetailsFile: "d", DiffFile: "f",
		})
		require.NoError(t, err)
	}

	runs, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, runs, 3)

	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
	assert.True(t, runs[1].StartedAt.After(runs[2].StartedAt))
}
