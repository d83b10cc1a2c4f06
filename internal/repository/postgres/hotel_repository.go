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

// HotelRepository handles hotel and room type data operations in PostgreSQL
type HotelRepository struct {
	db *database.PostgresDB
}

// NewHotelRepository creates a new hotel repository
func NewHotelRepository(db *database.PostgresDB) *HotelRepository {
	return &HotelRepository{db: db}
}

const hotelColumns = `id, event_id, name, address, phone, website, notes, created_at, updated_at`

const roomTypeColumns = `id, hotel_id, name, price_per_night, currency, capacity, total_rooms, booked_rooms, created_at, updated_at`

func scanHotel(row pgx.Row) (*domain.Hotel, error) {
	var h domain.Hotel
	err := row.Scan(
		&h.ID,
		&h.EventID,
		&h.Name,
		&h.Address,
		&h.Phone,
		&h.Website,
		&h.Notes,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func scanRoomType(row pgx.Row) (*domain.RoomType, error) {
	var rt domain.RoomType
	err := row.Scan(
		&rt.ID,
		&rt.HotelID,
		&rt.Name,
		&rt.PricePerNight,
		&rt.Currency,
		&rt.Capacity,
		&rt.TotalRooms,
		&rt.BookedRooms,
		&rt.CreatedAt,
		&rt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// Create creates a new hotel
func (r *HotelRepository) Create(ctx context.Context, h *domain.Hotel) error {
	query := `
		INSERT INTO hotels (id, event_id, name, address, phone, website, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		h.ID,
		h.EventID,
		h.Name,
		h.Address,
		h.Phone,
		h.Website,
		h.Notes,
		h.CreatedAt,
		h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create hotel: %w", err)
	}

	return nil
}

// GetByID retrieves a hotel of an event with its room types
func (r *HotelRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Hotel, error) {
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE id = $1 AND event_id = $2`

	h, err := scanHotel(r.db.Conn(ctx).QueryRow(ctx, query, id, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("hotel")
		}
		return nil, fmt.Errorf("failed to get hotel: %w", err)
	}

	rooms, err := r.ListRoomTypes(ctx, h.ID)
	if err != nil {
		return nil, err
	}
	h.RoomTypes = rooms

	return h, nil
}

// Update updates a hotel
func (r *HotelRepository) Update(ctx context.Context, h *domain.Hotel) error {
	query := `
		UPDATE hotels
		SET name = $3, address = $4, phone = $5, website = $6, notes = $7, updated_at = NOW()
		WHERE id = $1 AND event_id = $2
	`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, h.ID, h.EventID, h.Name, h.Address, h.Phone, h.Website, h.Notes)
	if err != nil {
		return fmt.Errorf("failed to update hotel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("hotel")
	}

	return nil
}

// Delete deletes a hotel. Hotels with booked rooms cannot be deleted.
func (r *HotelRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	query := `DELETE FROM hotels WHERE id = $1 AND event_id = $2`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id, eventID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.Conflict("hotel has accommodations and cannot be deleted")
		}
		return fmt.Errorf("failed to delete hotel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("hotel")
	}

	return nil
}

// List retrieves a page of hotels of an event
func (r *HotelRepository) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Hotel, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM hotels WHERE event_id = $1`
	if err := r.db.Conn(ctx).QueryRow(ctx, countQuery, eventID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count hotels: %w", err)
	}

	query := `
		SELECT ` + hotelColumns + `
		FROM hotels
		WHERE event_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, eventID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list hotels: %w", err)
	}
	defer rows.Close()

	var hotels []domain.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan hotel: %w", err)
		}
		hotels = append(hotels, *h)
	}

	return hotels, total, rows.Err()
}

// CreateRoomType creates a new room type
func (r *HotelRepository) CreateRoomType(ctx context.Context, rt *domain.RoomType) error {
	query := `
		INSERT INTO room_types (id, hotel_id, name, price_per_night, currency, capacity, total_rooms, booked_rooms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		rt.ID,
		rt.HotelID,
		rt.Name,
		rt.PricePerNight,
		rt.Currency,
		rt.Capacity,
		rt.TotalRooms,
		rt.BookedRooms,
		rt.CreatedAt,
		rt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create room type: %w", err)
	}

	return nil
}

// GetRoomType retrieves a room type of a hotel
func (r *HotelRepository) GetRoomType(ctx context.Context, hotelID, id uuid.UUID) (*domain.RoomType, error) {
	query := `SELECT ` + roomTypeColumns + ` FROM room_types WHERE id = $1 AND hotel_id = $2`

	rt, err := scanRoomType(r.db.Conn(ctx).QueryRow(ctx, query, id, hotelID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("room type")
		}
		return nil, fmt.Errorf("failed to get room type: %w", err)
	}

	return rt, nil
}

// LockRoomTypeInEvent locks a room type that belongs to one of the event's hotels
func (r *HotelRepository) LockRoomTypeInEvent(ctx context.Context, eventID, id uuid.UUID) (*domain.RoomType, error) {
	query := `
		SELECT rt.id, rt.hotel_id, rt.name, rt.price_per_night, rt.currency, rt.capacity,
			rt.total_rooms, rt.booked_rooms, rt.created_at, rt.updated_at
		FROM room_types rt
		JOIN hotels h ON h.id = rt.hotel_id
		WHERE rt.id = $1 AND h.event_id = $2
		FOR UPDATE OF rt
	`

	rt, err := scanRoomType(r.db.Conn(ctx).QueryRow(ctx, query, id, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("room type")
		}
		return nil, fmt.Errorf("failed to lock room type: %w", err)
	}

	return rt, nil
}

// UpdateRoomType updates the editable fields of a room type
func (r *HotelRepository) UpdateRoomType(ctx context.Context, rt *domain.RoomType) error {
	query := `
		UPDATE room_types
		SET name = $3, price_per_night = $4, currency = $5, capacity = $6, total_rooms = $7, updated_at = NOW()
		WHERE id = $1 AND hotel_id = $2
	`

	tag, err := r.db.Conn(ctx).Exec(ctx, query,
		rt.ID,
		rt.HotelID,
		rt.Name,
		rt.PricePerNight,
		rt.Currency,
		rt.Capacity,
		rt.TotalRooms,
	)
	if err != nil {
		if database.IsCheckViolation(err) {
			return apperrors.Conflict("total rooms cannot be lower than the number of booked rooms")
		}
		return fmt.Errorf("failed to update room type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("room type")
	}

	return nil
}

// AdjustBookedRooms adds delta to the booked room counter
func (r *HotelRepository) AdjustBookedRooms(ctx context.Context, id uuid.UUID, delta int) error {
	query := `UPDATE room_types SET booked_rooms = booked_rooms + $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id, delta)
	if err != nil {
		if database.IsCheckViolation(err) {
			return apperrors.Conflict("no rooms left for this room type")
		}
		return fmt.Errorf("failed to adjust booked rooms: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("room type")
	}

	return nil
}

// DeleteRoomType deletes a room type. Room types with accommodations cannot be deleted.
func (r *HotelRepository) DeleteRoomType(ctx context.Context, hotelID, id uuid.UUID) error {
	query := `DELETE FROM room_types WHERE id = $1 AND hotel_id = $2`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id, hotelID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.Conflict("room type has accommodations and cannot be deleted")
		}
		return fmt.Errorf("failed to delete room type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("room type")
	}

	return nil
}

// ListRoomTypes retrieves the room types of a hotel
func (r *HotelRepository) ListRoomTypes(ctx context.Context, hotelID uuid.UUID) ([]domain.RoomType, error) {
	query := `SELECT ` + roomTypeColumns + ` FROM room_types WHERE hotel_id = $1 ORDER BY price_per_night, name`

	rows, err := r.db.Conn(ctx).Query(ctx, query, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list room types: %w", err)
	}
	defer rows.Close()

	var rooms []domain.RoomType
	for rows.Next() {
		rt, err := scanRoomType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room type: %w", err)
		}
		rooms = append(rooms, *rt)
	}

	return rooms, rows.Err()
}
