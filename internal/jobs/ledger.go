package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"storyreel/internal/database"
)

// Ledger records job states in the shared SQLite database.
type Ledger struct {
	db  *database.DB
	now func() time.Time
}

// NewLedger wraps db.
func NewLedger(db *database.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// Record inserts or updates job. A blank ID is assigned a new UUID.
func (l *Ledger) Record(ctx context.Context, job Job) (Job, error) {
	job.Tag = strings.TrimSpace(job.Tag)
	if job.Tag == "" {
		return Job{}, errors.New("job tag is required")
	}
	if _, err := ParseState(string(job.State)); err != nil {
		return Job{}, err
	}
	if strings.TrimSpace(job.ID) == "" {
		job.ID = uuid.NewString()
	}
	job.UpdatedAt = l.now().UTC()
	stamp := job.UpdatedAt.Format(time.RFC3339Nano)

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO jobs (id, tag, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET tag = excluded.tag, state = excluded.state, updated_at = excluded.updated_at`,
		job.ID, job.Tag, string(job.State), stamp, stamp,
	)
	if err != nil {
		return Job{}, fmt.Errorf("record job %s: %w", job.ID, err)
	}
	return job, nil
}

// Query lists jobs for tag in creation order.
func (l *Ledger) Query(ctx context.Context, tag string) ([]Job, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, tag, state, updated_at FROM jobs WHERE tag = ? ORDER BY created_at, id`, tag)
	if err != nil {
		return nil, fmt.Errorf("query jobs %s: %w", tag, err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var (
			job     Job
			state   string
			updated string
		)
		if err := rows.Scan(&job.ID, &job.Tag, &state, &updated); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		if job.State, err = ParseState(state); err != nil {
			return nil, fmt.Errorf("job %s: %w", job.ID, err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, updated); parseErr == nil {
			job.UpdatedAt = ts
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// Ping checks that the ledger database answers.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

// Close is a no-op; the database is owned by the caller.
func (l *Ledger) Close() error { return nil }
