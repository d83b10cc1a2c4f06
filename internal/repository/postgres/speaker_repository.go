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

// SpeakerRepository handles speaker data operations in PostgreSQL
type SpeakerRepository struct {
	db *database.PostgresDB
}

// NewSpeakerRepository creates a new speaker repository
func NewSpeakerRepository(db *database.PostgresDB) *SpeakerRepository {
	return &SpeakerRepository{db: db}
}

const speakerColumns = `id, event_id, name, email, bio, company, title, photo_url, created_at, updated_at`

func scanSpeaker(row pgx.Row) (*domain.Speaker, error) {
	var s domain.Speaker
	err := row.Scan(
		&s.ID,
		&s.EventID,
		&s.Name,
		&s.Email,
		&s.Bio,
		&s.Company,
		&s.Title,
		&s.PhotoURL,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create creates a new speaker
func (r *SpeakerRepository) Create(ctx context.Context, s *domain.Speaker) error {
	query := `
		INSERT INTO speakers (id, event_id, name, email, bio, company, title, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		s.ID,
		s.EventID,
		s.Name,
		s.Email,
		s.Bio,
		s.Company,
		s.Title,
		s.PhotoURL,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("a speaker with this email already exists for the event")
		}
		return fmt.Errorf("failed to create speaker: %w", err)
	}

	return nil
}

// GetByID retrieves a speaker of an event
func (r *SpeakerRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Speaker, error) {
	query := `SELECT ` + speakerColumns + ` FROM speakers WHERE id = $1 AND event_id = $2`

	s, err := scanSpeaker(r.db.Conn(ctx).QueryRow(ctx, query, id, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("speaker")
		}
		return nil, fmt.Errorf("failed to get speaker: %w", err)
	}

	return s, nil
}

// Update updates a speaker
func (r *SpeakerRepository) Update(ctx context.Context, s *domain.Speaker) error {
	query := `
		UPDATE speakers
		SET name = $3, email = $4, bio = $5, company = $6, title = $7, photo_url = $8, updated_at = NOW()
		WHERE id = $1 AND event_id = $2
	`

	tag, err := r.db.Conn(ctx).Exec(ctx, query,
		s.ID,
		s.EventID,
		s.Name,
		s.Email,
		s.Bio,
		s.Company,
		s.Title,
		s.PhotoURL,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("a speaker with this email already exists for the event")
		}
		return fmt.Errorf("failed to update speaker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("speaker")
	}

	return nil
}

// Delete deletes a speaker and their session assignments
func (r *SpeakerRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	query := `DELETE FROM speakers WHERE id = $1 AND event_id = $2`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete speaker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("speaker")
	}

	return nil
}

// List retrieves a page of speakers of an event
func (r *SpeakerRepository) List(ctx context.Context, eventID uuid.UUID, search string, p pagination.Params) ([]domain.Speaker, int64, error) {
	var c conditions
	c.add("event_id = $%d", eventID)
	if search != "" {
		c.add("(name ILIKE $%[1]d OR company ILIKE $%[1]d)", likePattern(search))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM speakers ` + c.where()
	if err := r.db.Conn(ctx).QueryRow(ctx, countQuery, c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count speakers: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM speakers %s ORDER BY name LIMIT %s OFFSET %s`,
		speakerColumns, c.where(), c.placeholder(p.Limit), c.placeholder(p.Offset))

	rows, err := r.db.Conn(ctx).Query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list speakers: %w", err)
	}
	defer rows.Close()

	var speakers []domain.Speaker
	for rows.Next() {
		s, err := scanSpeaker(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan speaker: %w", err)
		}
		speakers = append(speakers, *s)
	}

	return speakers, total, rows.Err()
}

// CountInEvent counts how many of ids are speakers of the event
func (r *SpeakerRepository) CountInEvent(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM speakers WHERE event_id = $1 AND id = ANY($2)`

	var count int
	if err := r.db.Conn(ctx).QueryRow(ctx, query, eventID, ids).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count speakers: %w", err)
	}

	return count, nil
}
