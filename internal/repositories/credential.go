package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/shared"
)

const credentialColumns = `
	id, sequence, site, client_id, access_token, refresh_token, scope,
	expires_at, created_at, updated_at, deleted_at
`

// CredentialRepository implements [models.Repository] for [models.Credential] persistence.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Create inserts a new credential into the database with generated ID and sequence
func (r *CredentialRepository) Create(cred *models.Credential) error {
	if err := cred.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "credentials")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	cred.SetID(id)
	cred.SetSequence(sequence)

	query := `
		INSERT INTO credentials (
			id, sequence, site, client_id, access_token, refresh_token, scope,
			expires_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id, sequence, cred.Site(), cred.ClientID(), cred.AccessToken(), cred.RefreshToken(), cred.Scope(),
		cred.ExpiresAt(), cred.CreatedAt(), cred.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert credential: %w", err)
	}

	return nil
}

// Get retrieves a credential by ID, excluding soft-deleted credentials
func (r *CredentialRepository) Get(id string) (*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// GetByClient retrieves the most recent live credential for site and clientID.
//
// Returns [shared.ErrCredentialNotFound] when none exists.
func (r *CredentialRepository) GetByClient(site, clientID string) (*models.Credential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM credentials
		WHERE site = ? AND client_id = ? AND deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1
	`
	return r.scan(r.db.QueryRow(query, site, clientID))
}

// Update modifies an existing credential in the database
func (r *CredentialRepository) Update(cred *models.Credential) error {
	if err := cred.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	cred.SetUpdatedAt(now)

	query := `
		UPDATE credentials
		SET access_token = ?, refresh_token = ?, scope = ?, expires_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		cred.AccessToken(), cred.RefreshToken(), cred.Scope(), cred.ExpiresAt(), now, cred.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}

	return expectOneRow(result, "credentials", cred.ID())
}

// Delete soft-deletes a credential by ID
func (r *CredentialRepository) Delete(id string) error {
	return softDelete(r.db, "credentials", id)
}

// List retrieves all live credentials, optionally filtered by "site" and "client_id"
func (r *CredentialRepository) List(criteria map[string]any) ([]*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE deleted_at IS NULL`
	args := []any{}

	if site, ok := criteria["site"].(string); ok && site != "" {
		query += " AND site = ?"
		args = append(args, site)
	}

	if clientID, ok := criteria["client_id"].(string); ok && clientID != "" {
		query += " AND client_id = ?"
		args = append(args, clientID)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	var creds []*models.Credential
	for rows.Next() {
		cred, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return creds, nil
}

func (r *CredentialRepository) scan(row scanner) (*models.Credential, error) {
	var (
		id           string
		sequence     int
		site         string
		clientID     string
		accessToken  string
		refreshToken string
		scope        string
		expiresAt    sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &site, &clientID, &accessToken, &refreshToken, &scope,
		&expiresAt, &createdAt, &updatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrCredentialNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan credential: %w", err)
	}

	cred := models.NewCredential(sequence, site, clientID)
	cred.SetID(id)
	cred.SetCreatedAt(createdAt)
	cred.SetUpdatedAt(updatedAt)
	cred.SetScope(scope)
	cred.SetToken(tokenFromColumns(accessToken, refreshToken, expiresAt))
	if deletedAt.Valid {
		cred.SetDeletedAt(&deletedAt.Time)
	}

	return cred, nil
}
