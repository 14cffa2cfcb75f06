package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/shared"
)

const requestLogColumns = `
	id, sequence, method, path, status_code, error_message, created_at, updated_at, deleted_at
`

// ErrRequestLogNotFound is returned when a request log entry does not exist.
var ErrRequestLogNotFound = errors.New("request log entry not found")

// RequestLogRepository implements [models.Repository] for [models.RequestLog] persistence.
type RequestLogRepository struct {
	db *sql.DB
}

// NewRequestLogRepository creates a new [RequestLogRepository] with the given database connection
func NewRequestLogRepository(db *sql.DB) *RequestLogRepository {
	return &RequestLogRepository{db: db}
}

// Create inserts a new entry with generated ID and sequence
func (r *RequestLogRepository) Create(entry *models.RequestLog) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "request_log")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	entry.SetID(id)
	entry.SetSequence(sequence)

	query := `
		INSERT INTO request_log (id, sequence, method, path, status_code, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id, sequence, entry.Method(), entry.Path(), entry.StatusCode(), nullString(entry.ErrorMessage()),
		entry.CreatedAt(), entry.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert request log: %w", err)
	}

	return nil
}

// Get retrieves an entry by ID
func (r *RequestLogRepository) Get(id string) (*models.RequestLog, error) {
	query := `SELECT ` + requestLogColumns + ` FROM request_log WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// Update stores the outcome of a request
func (r *RequestLogRepository) Update(entry *models.RequestLog) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	entry.SetUpdatedAt(now)

	query := `
		UPDATE request_log
		SET status_code = ?, error_message = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, entry.StatusCode(), nullString(entry.ErrorMessage()), now, entry.ID())
	if err != nil {
		return fmt.Errorf("failed to update request log: %w", err)
	}

	return expectOneRow(result, "request_log", entry.ID())
}

// Delete soft-deletes an entry by ID
func (r *RequestLogRepository) Delete(id string) error {
	return softDelete(r.db, "request_log", id)
}

// List retrieves entries newest first.
//
// Supported criteria: "method" (string), "failed" (bool) and "limit" (int).
func (r *RequestLogRepository) List(criteria map[string]any) ([]*models.RequestLog, error) {
	query := `SELECT ` + requestLogColumns + ` FROM request_log WHERE deleted_at IS NULL`
	args := []any{}

	if method, ok := criteria["method"].(string); ok && method != "" {
		query += " AND method = ?"
		args = append(args, method)
	}

	if failed, ok := criteria["failed"].(bool); ok && failed {
		query += " AND (status_code >= 400 OR error_message IS NOT NULL)"
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query request log: %w", err)
	}
	defer rows.Close()

	var entries []*models.RequestLog
	for rows.Next() {
		entry, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

func (r *RequestLogRepository) scan(row scanner) (*models.RequestLog, error) {
	var (
		id           string
		sequence     int
		method       string
		path         string
		statusCode   int
		errorMessage sql.NullString
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(&id, &sequence, &method, &path, &statusCode, &errorMessage, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan request log: %w", err)
	}

	entry := models.NewRequestLog(sequence, method, path)
	entry.SetID(id)
	entry.SetCreatedAt(createdAt)
	entry.SetUpdatedAt(updatedAt)
	entry.SetStatusCode(statusCode)
	if errorMessage.Valid {
		entry.SetErrorMessage(errorMessage.String)
	}
	if deletedAt.Valid {
		entry.SetDeletedAt(&deletedAt.Time)
	}

	return entry, nil
}
