package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const jobColumns = `id, owner_id, topic, title, status, stage, progress, message,
	script_json, output_path, output_url, error_message, error_code, recoverable,
	chunk_count, chunks_completed, created_at, updated_at`

// Create inserts a new job and returns its id. Status defaults to pending.
func (s *Store) Create(ctx context.Context, job *Job) (int64, error) {
	if job.Status == "" {
		job.Status = StatusPending
	}
	if !job.Status.Valid() {
		return 0, fmt.Errorf("create job: invalid status %q", job.Status)
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	var id int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO jobs (owner_id, topic, title, status, stage, progress, message,
				script_json, output_path, output_url, error_message, error_code, recoverable,
				chunk_count, chunks_completed, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			job.OwnerID, job.Topic, job.Title, string(job.Status), job.Stage, job.Progress, job.Message,
			nullable(job.ScriptJSON), nullable(job.OutputPath), nullable(job.OutputURL),
			nullable(job.ErrorMessage), nullable(job.ErrorCode), boolToInt(job.Recoverable),
			job.ChunkCount, job.ChunksCompleted, formatTime(now), formatTime(now))
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("create job: %w", err)
	}
	job.ID = id
	return id, nil
}

// Get loads a job by id. Returns (nil, nil) when no such job exists.
func (s *Store) Get(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}
	return job, nil
}

// List returns jobs ordered by creation time, newest first. When statuses are
// given, only matching jobs are returned.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := "SELECT " + jobColumns + " FROM jobs"
	var args []any
	if len(statuses) > 0 {
		marks := make([]string, len(statuses))
		for i, status := range statuses {
			marks[i] = "?"
			args = append(args, string(status))
		}
		query += " WHERE status IN (" + strings.Join(marks, ", ") + ")"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var result []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		result = append(result, job)
	}
	return result, rows.Err()
}

// SetScript records the generated script and derived chunk count.
func (s *Store) SetScript(ctx context.Context, id int64, title, scriptJSON string, chunkCount int) error {
	return s.touchUpdate(ctx, id, "set script",
		"UPDATE jobs SET title = ?, script_json = ?, chunk_count = ?, updated_at = ? WHERE id = ?",
		title, nullable(scriptJSON), chunkCount)
}

// UpdateProgress records the current stage, fraction, and message.
func (s *Store) UpdateProgress(ctx context.Context, id int64, stage string, progress float64, message string, chunksCompleted int) error {
	return s.touchUpdate(ctx, id, "update progress",
		"UPDATE jobs SET status = ?, stage = ?, progress = ?, message = ?, chunks_completed = ?, updated_at = ? WHERE id = ?",
		string(StatusGenerating), stage, progress, message, chunksCompleted)
}

// Touch bumps updated_at without changing any other field. The pipeline calls
// this on its heartbeat so watchers can tell a long render from a stalled job.
func (s *Store) Touch(ctx context.Context, id int64) error {
	return s.touchUpdate(ctx, id, "touch",
		"UPDATE jobs SET updated_at = ? WHERE id = ?")
}

// MarkCompleted finalizes a successful job.
func (s *Store) MarkCompleted(ctx context.Context, id int64, outputPath, outputURL string) error {
	return s.touchUpdate(ctx, id, "mark completed",
		"UPDATE jobs SET status = ?, stage = 'completed', progress = 1.0, output_path = ?, output_url = ?, updated_at = ? WHERE id = ?",
		string(StatusCompleted), nullable(outputPath), nullable(outputURL))
}

// MarkFailed records the classified failure on the job.
func (s *Store) MarkFailed(ctx context.Context, id int64, code, message string, recoverable bool) error {
	return s.touchUpdate(ctx, id, "mark failed",
		"UPDATE jobs SET status = ?, error_code = ?, error_message = ?, recoverable = ?, updated_at = ? WHERE id = ?",
		string(StatusFailed), nullable(code), nullable(message), boolToInt(recoverable))
}

// MarkCancelled records an external cancellation.
func (s *Store) MarkCancelled(ctx context.Context, id int64) error {
	return s.touchUpdate(ctx, id, "mark cancelled",
		"UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?",
		string(StatusCancelled))
}

// ResetForRetry returns a failed or cancelled job to pending and clears its
// error fields. Jobs in other states are left alone.
func (s *Store) ResetForRetry(ctx context.Context, id int64) (bool, error) {
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `
			UPDATE jobs SET status = ?, stage = '', progress = 0, message = '',
				error_message = NULL, error_code = NULL, recoverable = 0,
				chunks_completed = 0, updated_at = ?
			WHERE id = ? AND status IN (?, ?)`,
			string(StatusPending), formatTime(time.Now().UTC()), id,
			string(StatusFailed), string(StatusCancelled))
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("reset job %d: %w", id, err)
	}
	return affected > 0, nil
}

// ClearTerminal deletes completed, failed, and cancelled jobs and reports how
// many were removed.
func (s *Store) ClearTerminal(ctx context.Context) (int64, error) {
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			"DELETE FROM jobs WHERE status IN (?, ?, ?)",
			string(StatusCompleted), string(StatusFailed), string(StatusCancelled))
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return affected, nil
}

func (s *Store) touchUpdate(ctx context.Context, id int64, op, query string, args ...any) error {
	args = append(args, formatTime(time.Now().UTC()), id)
	if err := s.execWithRetry(ctx, query, args...); err != nil {
		return fmt.Errorf("%s for job %d: %w", op, id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job                                                    Job
		status                                                 string
		scriptJSON, outputPath, outputURL, errMessage, errCode sql.NullString
		recoverable                                            int
		createdAt, updatedAt                                   string
	)
	err := row.Scan(&job.ID, &job.OwnerID, &job.Topic, &job.Title, &status, &job.Stage,
		&job.Progress, &job.Message, &scriptJSON, &outputPath, &outputURL,
		&errMessage, &errCode, &recoverable, &job.ChunkCount, &job.ChunksCompleted,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	job.Status = Status(status)
	job.ScriptJSON = scriptJSON.String
	job.OutputPath = outputPath.String
	job.OutputURL = outputURL.String
	job.ErrorMessage = errMessage.String
	job.ErrorCode = errCode.String
	job.Recoverable = recoverable != 0
	job.CreatedAt = parseTime(createdAt)
	job.UpdatedAt = parseTime(updatedAt)
	return &job, nil
}

func nullable(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
