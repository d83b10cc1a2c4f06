package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/id"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// APIKeyRepository defines API key repository operations
type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.APIKey, error)
	GetByPublicID(ctx context.Context, publicID string) (*domain.APIKey, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	ListByOrganizationID(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.APIKey, int64, error)
	UpdateLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}

// APIKeyService manages organization API keys
type APIKeyService struct {
	apiKeyRepo  APIKeyRepository
	auditLogger AuditLogger
	// touch records key usage; replaced in tests to run synchronously
	touch func(id uuid.UUID)
}

// NewAPIKeyService creates a new API key service
func NewAPIKeyService(apiKeyRepo APIKeyRepository) *APIKeyService {
	s := &APIKeyService{apiKeyRepo: apiKeyRepo}
	s.touch = func(id uuid.UUID) {
		go func() {
			_ = s.apiKeyRepo.UpdateLastUsed(context.Background(), id, time.Now())
		}()
	}
	return s
}

// SetAuditLogger sets the audit logger for the API key service
func (s *APIKeyService) SetAuditLogger(logger AuditLogger) {
	s.auditLogger = logger
}

// Create generates a key. The full key is only part of the result.
func (s *APIKeyService) Create(ctx context.Context, orgID uuid.UUID, input *domain.APIKeyInput, actor domain.Actor) (*domain.APIKeyCreateResult, error) {
	for _, scope := range input.Scopes {
		if !domain.IsValidScope(scope) {
			return nil, apperrors.Validation(fmt.Sprintf("unknown scope %q", scope))
		}
	}

	key, err := id.NewAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(key.Secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash api key: %w", err)
	}

	now := time.Now()
	expiresAt := input.ExpiresAt
	if expiresAt == nil {
		defaultExpiry := now.AddDate(1, 0, 0)
		expiresAt = &defaultExpiry
	} else if !expiresAt.After(now) {
		return nil, apperrors.Validation("expiresAt must be in the future")
	}

	apiKey := &domain.APIKey{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           input.Name,
		PublicID:       key.PublicID,
		SecretHash:     string(hash),
		SecretPreview:  key.Preview(),
		Scopes:         input.Scopes,
		ExpiresAt:      expiresAt,
		CreatedBy:      actor.UserID,
		CreatedAt:      now,
	}
	if len(apiKey.Scopes) == 0 {
		apiKey.Scopes = domain.DefaultScopes()
	}

	if err := s.apiKeyRepo.Create(ctx, apiKey); err != nil {
		return nil, fmt.Errorf("failed to create api key: %w", err)
	}

	recordAudit(s.auditLogger, actor, auditEntry{
		orgID:        orgID,
		action:       domain.AuditActionAPIKeyCreated,
		resourceType: domain.AuditResourceAPIKey,
		resourceID:   &apiKey.ID,
		resourceName: apiKey.Name,
		description:  "api key created",
		metadata:     map[string]any{"scopes": apiKey.Scopes},
	})

	return &domain.APIKeyCreateResult{APIKey: apiKey, Key: key.String()}, nil
}

// List lists the API keys of an organization
func (s *APIKeyService) List(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.APIKey, int64, error) {
	return s.apiKeyRepo.ListByOrganizationID(ctx, orgID, p)
}

// Delete revokes an API key
func (s *APIKeyService) Delete(ctx context.Context, orgID, keyID uuid.UUID, actor domain.Actor) error {
	key, err := s.apiKeyRepo.GetByID(ctx, orgID, keyID)
	if err != nil {
		return err
	}

	if err := s.apiKeyRepo.Delete(ctx, orgID, keyID); err != nil {
		return err
	}

	recordAudit(s.auditLogger, actor, auditEntry{
		orgID:        orgID,
		action:       domain.AuditActionAPIKeyRevoked,
		resourceType: domain.AuditResourceAPIKey,
		resourceID:   &key.ID,
		resourceName: key.Name,
		description:  "api key revoked",
	})

	return nil
}

// Validate checks a full key presented in the x-api-key header and returns it.
// Last use is recorded in the background.
func (s *APIKeyService) Validate(ctx context.Context, rawKey string) (*domain.APIKey, error) {
	parsed, err := id.ParseAPIKey(rawKey)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid API key")
	}

	key, err := s.apiKeyRepo.GetByPublicID(ctx, parsed.PublicID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized("invalid API key")
		}
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}

	if key.IsExpired(time.Now()) {
		return nil, apperrors.Unauthorized("API key expired")
	}

	if bcrypt.CompareHashAndPassword([]byte(key.SecretHash), []byte(parsed.Secret)) != nil {
		return nil, apperrors.Unauthorized("invalid API key")
	}

	s.touch(key.ID)

	return key, nil
}
