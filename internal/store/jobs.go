package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Job statuses, in lifecycle order.
const (
	JobStatusQueued     = "queued"
	JobStatusGenerating = "generating"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// SuggestionJob is one async generation request tracked in Postgres.
type SuggestionJob struct {
	ID        string
	UserID    string
	Status    string
	Request   []byte
	Result    []byte
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store wraps the pgx pool with the queries the service needs.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateSuggestionJob inserts a new queued job.
func (s *Store) CreateSuggestionJob(ctx context.Context, id, userID string, request []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO suggestion_jobs (id, user_id, status, request, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())`,
		id, userID, JobStatusQueued, request)
	return err
}

// UpdateSuggestionJobStatus moves a job to a new status.
func (s *Store) UpdateSuggestionJobStatus(ctx context.Context, id, status string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE suggestion_jobs SET status = $2, updated_at = now() WHERE id = $1`,
		id, status)
	return err
}

// CompleteSuggestionJob stores the result and marks the job completed.
func (s *Store) CompleteSuggestionJob(ctx context.Context, id string, result []byte) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE suggestion_jobs
		SET status = $2, result = $3, updated_at = now()
		WHERE id = $1`,
		id, JobStatusCompleted, result)
	return err
}

// FailSuggestionJob records the error message and marks the job failed.
func (s *Store) FailSuggestionJob(ctx context.Context, id, errMsg string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE suggestion_jobs
		SET status = $2, error = $3, updated_at = now()
		WHERE id = $1`,
		id, JobStatusFailed, errMsg)
	return err
}

// GetSuggestionJob fetches one job by id.
func (s *Store) GetSuggestionJob(ctx context.Context, id string) (*SuggestionJob, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, status, request, result, COALESCE(error, ''), created_at, updated_at
		FROM suggestion_jobs WHERE id = $1`, id)

	var job SuggestionJob
	err := row.Scan(&job.ID, &job.UserID, &job.Status, &job.Request, &job.Result, &job.Error, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// DeleteOldSuggestionJobs removes finished jobs older than the retention
// window.
func (s *Store) DeleteOldSuggestionJobs(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM suggestion_jobs
		WHERE status IN ($1, $2) AND updated_at < now() - interval '7 days'`,
		JobStatusCompleted, JobStatusFailed)
	return err
}

// ListSuggestionJobsByUser returns the user's most recent jobs.
func (s *Store) ListSuggestionJobsByUser(ctx context.Context, userID string, limit int) ([]SuggestionJob, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, status, request, result, COALESCE(error, ''), created_at, updated_at
		FROM suggestion_jobs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []SuggestionJob
	for rows.Next() {
		var job SuggestionJob
		if err := rows.Scan(&job.ID, &job.UserID, &job.Status, &job.Request, &job.Result, &job.Error, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
