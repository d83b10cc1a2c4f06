package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eventdesk/eventdesk/api/internal/domain"
)

// AuditRepository stores audit logs through sqlx on the reporting connection
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateAuditLog creates a new audit log entry
func (r *AuditRepository) CreateAuditLog(ctx context.Context, input *domain.AuditLogInput) (*domain.AuditLog, error) {
	log := &domain.AuditLog{
		ID:             uuid.New(),
		OrganizationID: input.OrganizationID,
		ActorID:        input.ActorID,
		ActorEmail:     input.ActorEmail,
		ActorType:      input.ActorType,
		Action:         input.Action,
		ResourceType:   input.ResourceType,
		ResourceID:     input.ResourceID,
		ResourceName:   input.ResourceName,
		Description:    input.Description,
		Metadata:       domain.JSONMap(input.Metadata),
		IPAddress:      input.IPAddress,
		UserAgent:      input.UserAgent,
		RequestID:      input.RequestID,
		CreatedAt:      time.Now(),
	}
	if log.ActorType == "" {
		log.ActorType = domain.ActorTypeUser
	}

	query := `
		INSERT INTO audit_logs (
			id, organization_id, actor_id, actor_email, actor_type,
			action, resource_type, resource_id, resource_name, description,
			metadata, ip_address, user_agent, request_id, created_at
		) VALUES (
			:id, :organization_id, :actor_id, :actor_email, :actor_type,
			:action, :resource_type, :resource_id, :resource_name, :description,
			:metadata, :ip_address, :user_agent, :request_id, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return nil, fmt.Errorf("failed to create audit log: %w", err)
	}

	return log, nil
}

// ListAuditLogs retrieves audit logs of an organization with filtering and pagination
func (r *AuditRepository) ListAuditLogs(ctx context.Context, filter *domain.AuditLogFilter) ([]domain.AuditLog, int64, error) {
	var c conditions
	c.add("organization_id = $%d", filter.OrganizationID)
	if filter.Action != nil {
		c.add("action = $%d", *filter.Action)
	}
	if filter.ResourceType != nil {
		c.add("resource_type = $%d", *filter.ResourceType)
	}
	if filter.ResourceID != nil {
		c.add("resource_id = $%d", *filter.ResourceID)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM audit_logs `+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, organization_id, actor_id, actor_email, actor_type,
			action, resource_type, resource_id, resource_name, description,
			metadata, ip_address, user_agent, request_id, created_at
		FROM audit_logs
		%s
		ORDER BY created_at DESC
		LIMIT %s OFFSET %s`,
		c.where(), c.placeholder(filter.Limit), c.placeholder(filter.Offset))

	var logs []domain.AuditLog
	if err := r.db.SelectContext(ctx, &logs, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return logs, total, nil
}

// DeleteOlderThan removes audit logs created before cutoff
func (r *AuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit logs: %w", err)
	}
	return res.RowsAffected()
}
