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

// SessionRepository handles schedule session data operations in PostgreSQL
type SessionRepository struct {
	db *database.PostgresDB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.PostgresDB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `s.id, s.event_id, s.track_id, s.title, s.description, s.room, s.start_time, s.end_time,
	(SELECT COALESCE(array_agg(ss.speaker_id ORDER BY ss.speaker_id), '{}')
	 FROM session_speakers ss WHERE ss.session_id = s.id),
	s.created_at, s.updated_at`

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID,
		&s.EventID,
		&s.TrackID,
		&s.Title,
		&s.Description,
		&s.Room,
		&s.StartTime,
		&s.EndTime,
		&s.SpeakerIDs,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create creates a new session with its speaker assignments
func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	return r.db.RunInTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO event_sessions (id, event_id, track_id, title, description, room, start_time, end_time, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`

		_, err := r.db.Conn(ctx).Exec(ctx, query,
			s.ID,
			s.EventID,
			s.TrackID,
			s.Title,
			s.Description,
			s.Room,
			s.StartTime,
			s.EndTime,
			s.CreatedAt,
			s.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		return r.setSpeakers(ctx, s.ID, s.SpeakerIDs)
	})
}

// GetByID retrieves a session of an event
func (r *SessionRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM event_sessions s WHERE s.id = $1 AND s.event_id = $2`

	s, err := scanSession(r.db.Conn(ctx).QueryRow(ctx, query, id, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("session")
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return s, nil
}

// Update updates a session and replaces its speaker assignments
func (r *SessionRepository) Update(ctx context.Context, s *domain.Session) error {
	return r.db.RunInTx(ctx, func(ctx context.Context) error {
		query := `
			UPDATE event_sessions
			SET track_id = $3, title = $4, description = $5, room = $6, start_time = $7, end_time = $8, updated_at = NOW()
			WHERE id = $1 AND event_id = $2
		`

		tag, err := r.db.Conn(ctx).Exec(ctx, query,
			s.ID,
			s.EventID,
			s.TrackID,
			s.Title,
			s.Description,
			s.Room,
			s.StartTime,
			s.EndTime,
		)
		if err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("session")
		}

		return r.setSpeakers(ctx, s.ID, s.SpeakerIDs)
	})
}

func (r *SessionRepository) setSpeakers(ctx context.Context, sessionID uuid.UUID, speakerIDs []uuid.UUID) error {
	conn := r.db.Conn(ctx)

	if _, err := conn.Exec(ctx, `DELETE FROM session_speakers WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to clear session speakers: %w", err)
	}
	if len(speakerIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO session_speakers (session_id, speaker_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING
	`
	if _, err := conn.Exec(ctx, query, sessionID, speakerIDs); err != nil {
		return fmt.Errorf("failed to set session speakers: %w", err)
	}

	return nil
}

// Delete deletes a session
func (r *SessionRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	query := `DELETE FROM event_sessions WHERE id = $1 AND event_id = $2`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("session")
	}

	return nil
}

// List retrieves a page of sessions matching filter in start order
func (r *SessionRepository) List(ctx context.Context, filter *domain.SessionFilter, p pagination.Params) ([]domain.Session, int64, error) {
	var c conditions
	c.add("s.event_id = $%d", filter.EventID)
	if filter.TrackID != nil {
		c.add("s.track_id = $%d", *filter.TrackID)
	}
	if filter.SpeakerID != nil {
		c.add("s.id IN (SELECT session_id FROM session_speakers WHERE speaker_id = $%d)", *filter.SpeakerID)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM event_sessions s ` + c.where()
	if err := r.db.Conn(ctx).QueryRow(ctx, countQuery, c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM event_sessions s %s ORDER BY s.start_time, s.title LIMIT %s OFFSET %s`,
		sessionColumns, c.where(), c.placeholder(p.Limit), c.placeholder(p.Offset))

	sessions, err := r.query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

// ListAll retrieves every session of an event in start order
func (r *SessionRepository) ListAll(ctx context.Context, eventID uuid.UUID) ([]domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM event_sessions s WHERE s.event_id = $1 ORDER BY s.start_time, s.title`
	return r.query(ctx, query, eventID)
}

func (r *SessionRepository) query(ctx context.Context, query string, args ...any) ([]domain.Session, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}

	return sessions, rows.Err()
}
