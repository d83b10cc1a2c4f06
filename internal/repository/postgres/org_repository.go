package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/pkg/database"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// OrgRepository handles organization, membership and invitation data in PostgreSQL
type OrgRepository struct {
	db *database.PostgresDB
}

// NewOrgRepository creates a new organization repository
func NewOrgRepository(db *database.PostgresDB) *OrgRepository {
	return &OrgRepository{db: db}
}

// Create creates a new organization
func (r *OrgRepository) Create(ctx context.Context, org *domain.Organization) error {
	query := `
		INSERT INTO organizations (id, name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		org.ID,
		org.Name,
		org.Slug,
		org.CreatedAt,
		org.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("organization slug already taken")
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

// GetByID retrieves an organization by ID
func (r *OrgRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`

	var org domain.Organization
	err := r.db.Conn(ctx).QueryRow(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("organization")
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return &org, nil
}

// Lock takes a row lock on the organization for the rest of the transaction.
// Membership changes that must keep at least one admin serialize on it.
func (r *OrgRepository) Lock(ctx context.Context, id uuid.UUID) error {
	query := `SELECT id FROM organizations WHERE id = $1 FOR UPDATE`

	var locked uuid.UUID
	if err := r.db.Conn(ctx).QueryRow(ctx, query, id).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("organization")
		}
		return fmt.Errorf("failed to lock organization: %w", err)
	}

	return nil
}

// Update updates an organization
func (r *OrgRepository) Update(ctx context.Context, org *domain.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query, org.ID, org.Name)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	return nil
}

// ListByUserID retrieves the organizations a user belongs to, with the user's role
func (r *OrgRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Organization, error) {
	query := `
		SELECT o.id, o.name, o.slug, o.created_at, o.updated_at, om.role
		FROM organizations o
		JOIN organization_members om ON o.id = om.organization_id
		WHERE om.user_id = $1
		ORDER BY om.created_at, o.name
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		var org domain.Organization
		if err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.Slug,
			&org.CreatedAt,
			&org.UpdatedAt,
			&org.Role,
		); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}

	return orgs, rows.Err()
}

// SlugExists checks if a slug already exists
func (r *OrgRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM organizations WHERE slug = $1)`

	var exists bool
	err := r.db.Conn(ctx).QueryRow(ctx, query, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}

	return exists, nil
}

// AddMember adds a member to an organization
func (r *OrgRepository) AddMember(ctx context.Context, member *domain.OrganizationMember) error {
	query := `
		INSERT INTO organization_members (id, organization_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		member.ID,
		member.OrganizationID,
		member.UserID,
		member.Role,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("user is already a member of this organization")
		}
		return fmt.Errorf("failed to add member: %w", err)
	}

	return nil
}

// GetMember retrieves a member by organization and user
func (r *OrgRepository) GetMember(ctx context.Context, orgID, userID uuid.UUID) (*domain.OrganizationMember, error) {
	query := `
		SELECT id, organization_id, user_id, role, created_at, updated_at
		FROM organization_members
		WHERE organization_id = $1 AND user_id = $2
	`

	var member domain.OrganizationMember
	err := r.db.Conn(ctx).QueryRow(ctx, query, orgID, userID).Scan(
		&member.ID,
		&member.OrganizationID,
		&member.UserID,
		&member.Role,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("member")
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return &member, nil
}

// ListMembers retrieves a page of members of an organization with their users
func (r *OrgRepository) ListMembers(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.OrganizationMember, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM organization_members WHERE organization_id = $1`
	if err := r.db.Conn(ctx).QueryRow(ctx, countQuery, orgID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}

	query := `
		SELECT om.id, om.organization_id, om.user_id, om.role, om.created_at, om.updated_at,
			   u.id, u.email, u.name, u.super_admin, u.created_at, u.updated_at
		FROM organization_members om
		JOIN users u ON om.user_id = u.id
		WHERE om.organization_id = $1
		ORDER BY om.created_at, u.name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, orgID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []domain.OrganizationMember
	for rows.Next() {
		var member domain.OrganizationMember
		var user domain.User
		if err := rows.Scan(
			&member.ID,
			&member.OrganizationID,
			&member.UserID,
			&member.Role,
			&member.CreatedAt,
			&member.UpdatedAt,
			&user.ID,
			&user.Email,
			&user.Name,
			&user.SuperAdmin,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan member: %w", err)
		}
		member.User = &user
		members = append(members, member)
	}

	return members, total, rows.Err()
}

// CountMembersWithRole counts the members holding role
func (r *OrgRepository) CountMembersWithRole(ctx context.Context, orgID uuid.UUID, role domain.OrgRole) (int, error) {
	query := `SELECT COUNT(*) FROM organization_members WHERE organization_id = $1 AND role = $2`

	var count int
	if err := r.db.Conn(ctx).QueryRow(ctx, query, orgID, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}

	return count, nil
}

// RemoveMember removes a member from an organization
func (r *OrgRepository) RemoveMember(ctx context.Context, orgID, userID uuid.UUID) error {
	query := `DELETE FROM organization_members WHERE organization_id = $1 AND user_id = $2`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, orgID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("member")
	}

	return nil
}

// UpdateMemberRole updates a member's role
func (r *OrgRepository) UpdateMemberRole(ctx context.Context, orgID, userID uuid.UUID, role domain.OrgRole) error {
	query := `
		UPDATE organization_members
		SET role = $3, updated_at = NOW()
		WHERE organization_id = $1 AND user_id = $2
	`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, orgID, userID, role)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("member")
	}

	return nil
}

const invitationColumns = `id, organization_id, email, role, invited_by, token, expires_at, accepted_at, created_at`

func scanInvitation(row pgx.Row) (*domain.OrganizationInvitation, error) {
	var inv domain.OrganizationInvitation
	err := row.Scan(
		&inv.ID,
		&inv.OrganizationID,
		&inv.Email,
		&inv.Role,
		&inv.InvitedBy,
		&inv.Token,
		&inv.ExpiresAt,
		&inv.AcceptedAt,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// CreateInvitation creates an organization invitation. A second pending
// invitation for the same email is a conflict.
func (r *OrgRepository) CreateInvitation(ctx context.Context, invitation *domain.OrganizationInvitation) error {
	query := `
		INSERT INTO organization_invitations (id, organization_id, email, role, invited_by, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		invitation.ID,
		invitation.OrganizationID,
		invitation.Email,
		invitation.Role,
		invitation.InvitedBy,
		invitation.Token,
		invitation.ExpiresAt,
		invitation.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("an invitation for this email is already pending")
		}
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	return nil
}

// GetInvitationByToken retrieves an unaccepted invitation by token. Expiry is
// left to the caller so that it can report it distinctly.
func (r *OrgRepository) GetInvitationByToken(ctx context.Context, token string) (*domain.OrganizationInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM organization_invitations WHERE token = $1 AND accepted_at IS NULL`

	inv, err := scanInvitation(r.db.Conn(ctx).QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("invitation")
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return inv, nil
}

// AcceptInvitation marks an invitation as accepted
func (r *OrgRepository) AcceptInvitation(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE organization_invitations
		SET accepted_at = NOW()
		WHERE id = $1 AND accepted_at IS NULL
	`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("invitation")
	}

	return nil
}

// DeleteInvitation revokes a pending invitation
func (r *OrgRepository) DeleteInvitation(ctx context.Context, orgID, id uuid.UUID) error {
	query := `DELETE FROM organization_invitations WHERE id = $1 AND organization_id = $2 AND accepted_at IS NULL`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("invitation")
	}

	return nil
}

// ListPendingInvitations retrieves a page of pending invitations for an organization
func (r *OrgRepository) ListPendingInvitations(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.OrganizationInvitation, int64, error) {
	var total int64
	countQuery := `
		SELECT COUNT(*) FROM organization_invitations
		WHERE organization_id = $1 AND expires_at > NOW() AND accepted_at IS NULL
	`
	if err := r.db.Conn(ctx).QueryRow(ctx, countQuery, orgID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invitations: %w", err)
	}

	query := `
		SELECT ` + invitationColumns + `
		FROM organization_invitations
		WHERE organization_id = $1 AND expires_at > NOW() AND accepted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, orgID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []domain.OrganizationInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, *inv)
	}

	return invitations, total, rows.Err()
}

// DeleteExpiredInvitations removes invitations that expired without being accepted
func (r *OrgRepository) DeleteExpiredInvitations(ctx context.Context) (int64, error) {
	query := `DELETE FROM organization_invitations WHERE accepted_at IS NULL AND expires_at <= NOW()`

	tag, err := r.db.Conn(ctx).Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invitations: %w", err)
	}

	return tag.RowsAffected(), nil
}
