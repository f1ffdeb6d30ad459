package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Status represents the state of a rate refresh request.
type Status string

// Status values for the refresh lifecycle.
const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Refresh represents a rate refresh record in the DB.
type Refresh struct {
	ID          string
	Source      string
	WindowStart time.Time
	WindowEnd   time.Time
	Status      Status
	RowCount    *int64
	ErrorMsg    *string
	RequestedAt time.Time
	UpdatedAt   *time.Time
}

// RefreshRepository defines DB operations for refreshes.
type RefreshRepository interface {
	CreateRefresh(ctx context.Context, id, source string, start, end time.Time) (string, error)
	MarkRunning(ctx context.Context, id string) error
	MarkSuccess(ctx context.Context, id string, rowCount int64) error
	MarkFailed(ctx context.Context, id, errorMsg string) error
	GetByID(ctx context.Context, id string) (*Refresh, error)
}

// PostgresRefreshRepository is an implementation of RefreshRepository using PostgreSQL.
type PostgresRefreshRepository struct {
	db *sql.DB
}

// NewPostgresRefreshRepository creates a new PostgresRefreshRepository.
func NewPostgresRefreshRepository(db *sql.DB) RefreshRepository {
	return &PostgresRefreshRepository{db: db}
}

// CreateRefresh inserts a new refresh request. If a refresh for the same source
// and window is already pending/running, it returns the existing one's ID.
func (r *PostgresRefreshRepository) CreateRefresh(ctx context.Context, id, source string, start, end time.Time) (string, error) {
	query := `INSERT INTO refreshes (id, source, window_start, window_end, status, requested_at)
              VALUES ($1::uuid, $2, $3::date, $4::date, 'PENDING'::refresh_status, NOW())
              ON CONFLICT (source, window_start, window_end) WHERE status IN ('PENDING', 'RUNNING')
              DO UPDATE SET source = refreshes.source  -- no-op, changes nothing
              RETURNING id::text`

	var returnedID string
	err := r.db.QueryRowContext(ctx, query, id, source, start, end).Scan(&returnedID)
	if err != nil {
		return "", fmt.Errorf("failed to create refresh: %w", err)
	}
	return returnedID, nil
}

// MarkRunning updates a refresh record status to RUNNING.
func (r *PostgresRefreshRepository) MarkRunning(ctx context.Context, id string) error {
	// Failed status can occur on Asynq retry
	query := `UPDATE refreshes
				SET status=$1::refresh_status, updated_at=NOW()
				WHERE id=$2::uuid AND status IN ($3::refresh_status, $4::refresh_status)`
	result, err := r.db.ExecContext(ctx, query, StatusRunning, id, StatusPending, StatusFailed)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("refresh %s not found or not in PENDING/FAILED status", id)
	}
	return nil
}

// MarkSuccess updates the refresh record to SUCCESS with the number of rate rows written.
func (r *PostgresRefreshRepository) MarkSuccess(ctx context.Context, id string, rowCount int64) error {
	query := `UPDATE refreshes
				SET status=$1::refresh_status,
				    row_count=$2,
				    updated_at=NOW()
				WHERE id=$3::uuid AND status=$4::refresh_status`

	result, err := r.db.ExecContext(ctx, query, StatusSuccess, rowCount, id, StatusRunning)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, id)
}

// MarkFailed updates the refresh record to FAILED with an error message and NULL row count.
func (r *PostgresRefreshRepository) MarkFailed(ctx context.Context, id, errorMsg string) error {
	query := `UPDATE refreshes
				SET status=$1::refresh_status,
				    row_count=NULL,
				    error=$2,
				    updated_at=NOW()
				WHERE id=$3::uuid AND status IN ($4::refresh_status, $5::refresh_status)`

	result, err := r.db.ExecContext(ctx, query, StatusFailed, errorMsg, id, StatusPending, StatusRunning)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, id)
}

func checkRowsAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("refresh %s not found", id)
	}
	return nil
}

// GetByID retrieves a refresh record by id.
func (r *PostgresRefreshRepository) GetByID(ctx context.Context, id string) (*Refresh, error) {
	query := `SELECT id::text, source, window_start, window_end, status, row_count, error, requested_at, updated_at
              FROM refreshes
              WHERE id=$1::uuid`

	row := r.db.QueryRowContext(ctx, query, id)
	return scanRefresh(row)
}

// scanRefresh maps a single row into a Refresh, returning (nil, nil) for sql.ErrNoRows.
func scanRefresh(row *sql.Row) (*Refresh, error) {
	var ref Refresh
	var rowCount sql.NullInt64
	var updatedAt sql.NullTime
	var errMsg sql.NullString
	var statusStr string

	err := row.Scan(&ref.ID, &ref.Source, &ref.WindowStart, &ref.WindowEnd, &statusStr, &rowCount, &errMsg, &ref.RequestedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	ref.Status = Status(statusStr)
	if rowCount.Valid {
		ref.RowCount = &rowCount.Int64
	}
	if updatedAt.Valid {
		ref.UpdatedAt = &updatedAt.Time
	}
	if errMsg.Valid {
		ref.ErrorMsg = &errMsg.String
	}
	return &ref, nil
}
