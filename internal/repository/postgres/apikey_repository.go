package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/pkg/database"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// APIKeyRepository handles API key data operations in PostgreSQL
type APIKeyRepository struct {
	db *database.PostgresDB
}

// NewAPIKeyRepository creates a new API key repository
func NewAPIKeyRepository(db *database.PostgresDB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

const apiKeyColumns = `id, organization_id, name, public_id, secret_hash, secret_preview, scopes,
	expires_at, last_used_at, created_by, created_at`

func scanAPIKey(row pgx.Row) (*domain.APIKey, error) {
	var key domain.APIKey
	err := row.Scan(
		&key.ID,
		&key.OrganizationID,
		&key.Name,
		&key.PublicID,
		&key.SecretHash,
		&key.SecretPreview,
		&key.Scopes,
		&key.ExpiresAt,
		&key.LastUsedAt,
		&key.CreatedBy,
		&key.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// Create creates a new API key
func (r *APIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	query := `
		INSERT INTO api_keys (id, organization_id, name, public_id, secret_hash, secret_preview, scopes, expires_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		key.ID,
		key.OrganizationID,
		key.Name,
		key.PublicID,
		key.SecretHash,
		key.SecretPreview,
		key.Scopes,
		key.ExpiresAt,
		key.CreatedBy,
		key.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}

	return nil
}

// GetByID retrieves an API key of an organization by ID
func (r *APIKeyRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE id = $1 AND organization_id = $2`

	key, err := scanAPIKey(r.db.Conn(ctx).QueryRow(ctx, query, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("API key")
		}
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}

	return key, nil
}

// GetByPublicID retrieves an API key by the public part of the key
func (r *APIKeyRepository) GetByPublicID(ctx context.Context, publicID string) (*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE public_id = $1`

	key, err := scanAPIKey(r.db.Conn(ctx).QueryRow(ctx, query, publicID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("API key")
		}
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}

	return key, nil
}

// Delete deletes an API key of an organization
func (r *APIKeyRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	query := `DELETE FROM api_keys WHERE id = $1 AND organization_id = $2`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("API key")
	}

	return nil
}

// ListByOrganizationID retrieves a page of API keys for an organization
func (r *APIKeyRepository) ListByOrganizationID(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.APIKey, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM api_keys WHERE organization_id = $1`
	if err := r.db.Conn(ctx).QueryRow(ctx, countQuery, orgID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count API keys: %w", err)
	}

	query := `
		SELECT ` + apiKeyColumns + `
		FROM api_keys
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, orgID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list API keys: %w", err)
	}
	defer rows.Close()

	var keys []domain.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan API key: %w", err)
		}
		keys = append(keys, *key)
	}

	return keys, total, rows.Err()
}

// UpdateLastUsed updates the last used timestamp
func (r *APIKeyRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`

	_, err := r.db.Conn(ctx).Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to update last used: %w", err)
	}

	return nil
}
