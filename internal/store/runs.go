package store

import (
	"database/sql"

	"github.com/google/uuid"

	"devops-trace/internal/models"
)

type RunRepo struct {
	db *sql.DB
}

func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) Create(run *models.Run) (*models.Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	_, err := r.db.Exec(`
		INSERT INTO runs (id, started_at, finished_at, work_item_count, pull_request_count, summary_file, details_file, diff_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt, run.FinishedAt, run.WorkItemCount, run.PullRequestCount,
		run.SummaryFile, run.DetailsFile, run.DiffFile)
	if err != nil {
		return nil, err
	}

	return r.GetByID(run.ID)
}

func (r *RunRepo) GetByID(id string) (*models.Run, error) {
	var run models.Run

	err := r.db.QueryRow(`
		SELECT id, started_at, finished_at, work_item_count, pull_request_count, summary_file, details_file, diff_file, created_at
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.WorkItemCount, &run.PullRequestCount,
		&run.SummaryFile, &run.DetailsFile, &run.DiffFile, &run.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &run, nil
}

func (r *RunRepo) GetAll() ([]models.Run, error) {
	rows, err := r.db.Query(`
		SELECT id, started_at, finished_at, work_item_count, pull_request_count, summary_file, details_file, diff_file, created_at
		FROM runs
		ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		var run models.Run
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.WorkItemCount, &run.PullRequestCount,
			&run.SummaryFile, &run.DetailsFile, &run.DiffFile, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
