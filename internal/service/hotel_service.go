package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// HotelRepository defines hotel and room type repository operations
type HotelRepository interface {
	Create(ctx context.Context, h *domain.Hotel) error
	GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Hotel, error)
	Update(ctx context.Context, h *domain.Hotel) error
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Hotel, int64, error)
	CreateRoomType(ctx context.Context, rt *domain.RoomType) error
	GetRoomType(ctx context.Context, hotelID, id uuid.UUID) (*domain.RoomType, error)
	LockRoomTypeInEvent(ctx context.Context, eventID, id uuid.UUID) (*domain.RoomType, error)
	UpdateRoomType(ctx context.Context, rt *domain.RoomType) error
	AdjustBookedRooms(ctx context.Context, id uuid.UUID, delta int) error
	DeleteRoomType(ctx context.Context, hotelID, id uuid.UUID) error
	ListRoomTypes(ctx context.Context, hotelID uuid.UUID) ([]domain.RoomType, error)
}

// HotelService manages partner hotels and their room types
type HotelService struct {
	hotelRepo HotelRepository
	tx        TxRunner
}

// NewHotelService creates a new hotel service
func NewHotelService(hotelRepo HotelRepository, tx TxRunner) *HotelService {
	return &HotelService{hotelRepo: hotelRepo, tx: tx}
}

// Create creates a hotel
func (s *HotelService) Create(ctx context.Context, eventID uuid.UUID, input *domain.HotelInput) (*domain.Hotel, error) {
	now := time.Now()
	h := &domain.Hotel{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      input.Name,
		Address:   input.Address,
		Phone:     input.Phone,
		Website:   input.Website,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.hotelRepo.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Get retrieves a hotel with its room types
func (s *HotelService) Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Hotel, error) {
	return s.hotelRepo.GetByID(ctx, eventID, id)
}

// Update applies a partial update to a hotel
func (s *HotelService) Update(ctx context.Context, eventID, id uuid.UUID, input *domain.HotelUpdateInput) (*domain.Hotel, error) {
	h, err := s.hotelRepo.GetByID(ctx, eventID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		h.Name = *input.Name
	}
	if input.Address != nil {
		h.Address = *input.Address
	}
	if input.Phone != nil {
		h.Phone = *input.Phone
	}
	if input.Website != nil {
		h.Website = *input.Website
	}
	if input.Notes != nil {
		h.Notes = *input.Notes
	}
	h.UpdatedAt = time.Now()

	if err := s.hotelRepo.Update(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Delete deletes a hotel. Hotels with booked rooms cannot be deleted.
func (s *HotelService) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	return s.hotelRepo.Delete(ctx, eventID, id)
}

// List lists the hotels of an event
func (s *HotelService) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Hotel, int64, error) {
	return s.hotelRepo.List(ctx, eventID, p)
}

// CreateRoomType adds a room type to a hotel of the event
func (s *HotelService) CreateRoomType(ctx context.Context, eventID, hotelID uuid.UUID, input *domain.RoomTypeInput) (*domain.RoomType, error) {
	if _, err := s.hotelRepo.GetByID(ctx, eventID, hotelID); err != nil {
		return nil, err
	}

	now := time.Now()
	rt := &domain.RoomType{
		ID:            uuid.New(),
		HotelID:       hotelID,
		Name:          input.Name,
		PricePerNight: input.PricePerNight,
		Currency:      strings.ToUpper(input.Currency),
		Capacity:      input.Capacity,
		TotalRooms:    input.TotalRooms,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.hotelRepo.CreateRoomType(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

// ListRoomTypes lists the room types of a hotel of the event
func (s *HotelService) ListRoomTypes(ctx context.Context, eventID, hotelID uuid.UUID) ([]domain.RoomType, error) {
	if _, err := s.hotelRepo.GetByID(ctx, eventID, hotelID); err != nil {
		return nil, err
	}
	return s.hotelRepo.ListRoomTypes(ctx, hotelID)
}

// UpdateRoomType applies a partial update to a room type. Total rooms
// cannot drop below the rooms already booked.
func (s *HotelService) UpdateRoomType(ctx context.Context, eventID, hotelID, id uuid.UUID, input *domain.RoomTypeUpdateInput) (*domain.RoomType, error) {
	var rt *domain.RoomType

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		rt, err = s.hotelRepo.LockRoomTypeInEvent(ctx, eventID, id)
		if err != nil {
			return err
		}
		if rt.HotelID != hotelID {
			return apperrors.NotFound("room type")
		}

		if input.Name != nil {
			rt.Name = *input.Name
		}
		if input.PricePerNight != nil {
			rt.PricePerNight = *input.PricePerNight
		}
		if input.Currency != nil {
			rt.Currency = strings.ToUpper(*input.Currency)
		}
		if input.Capacity != nil {
			rt.Capacity = *input.Capacity
		}
		if input.TotalRooms != nil {
			if *input.TotalRooms < rt.BookedRooms {
				return apperrors.Conflict("total rooms cannot be lower than the number of booked rooms")
			}
			rt.TotalRooms = *input.TotalRooms
		}
		rt.UpdatedAt = time.Now()

		return s.hotelRepo.UpdateRoomType(ctx, rt)
	})
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// DeleteRoomType deletes a room type of a hotel of the event
func (s *HotelService) DeleteRoomType(ctx context.Context, eventID, hotelID, id uuid.UUID) error {
	if _, err := s.hotelRepo.GetByID(ctx, eventID, hotelID); err != nil {
		return err
	}
	return s.hotelRepo.DeleteRoomType(ctx, hotelID, id)
}
