package repositories

import (
	"database/sql"
	"fmt"
)

// scanner is satisfied by [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// NextSequence bumps and returns the counter in {table}_sequence.
//
// Sequences give rows a stable human-readable order (credential #3, request #42) next to their uuid.
func NextSequence(db *sql.DB, table string) (int, error) {
	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := db.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", table, err)
	}
	return sequence, nil
}

// softDelete sets deleted_at on the live row with the given id.
func softDelete(db *sql.DB, table, id string) error {
	result, err := db.Exec(fmt.Sprintf("UPDATE %s SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL", table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return expectOneRow(result, table, id)
}

func expectOneRow(result sql.Result, table, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s row not found or already deleted: %s", table, id)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
