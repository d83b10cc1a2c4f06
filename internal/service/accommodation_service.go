package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// AccommodationRepository defines accommodation repository operations
type AccommodationRepository interface {
	Create(ctx context.Context, a *domain.Accommodation) error
	GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Accommodation, error)
	Lock(ctx context.Context, eventID, id uuid.UUID) (*domain.Accommodation, error)
	Update(ctx context.Context, a *domain.Accommodation) error
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Accommodation, int64, error)
	ListActiveByRegistration(ctx context.Context, registrationID uuid.UUID) ([]domain.Accommodation, error)
}

// RegistrationGetter loads a registration of an event
type RegistrationGetter interface {
	GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Registration, error)
}

// AccommodationService books hotel rooms for registrations
type AccommodationService struct {
	accRepo   AccommodationRepository
	hotelRepo HotelRepository
	regRepo   RegistrationGetter
	tx        TxRunner
}

// NewAccommodationService creates a new accommodation service
func NewAccommodationService(accRepo AccommodationRepository, hotelRepo HotelRepository, regRepo RegistrationGetter, tx TxRunner) *AccommodationService {
	return &AccommodationService{
		accRepo:   accRepo,
		hotelRepo: hotelRepo,
		regRepo:   regRepo,
		tx:        tx,
	}
}

func checkStay(checkIn, checkOut time.Time) error {
	if !checkOut.After(checkIn) {
		return apperrors.Validation("checkOut must be after checkIn")
	}
	return nil
}

// Create books a room of the given type for a registration of the event
func (s *AccommodationService) Create(ctx context.Context, eventID uuid.UUID, input *domain.AccommodationInput) (*domain.Accommodation, error) {
	if err := checkStay(input.CheckIn, input.CheckOut); err != nil {
		return nil, err
	}

	var a *domain.Accommodation
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		reg, err := s.regRepo.GetByID(ctx, eventID, input.RegistrationID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.Unprocessable("registration does not belong to this event")
			}
			return err
		}
		if reg.Status == domain.RegistrationStatusCancelled {
			return apperrors.Unprocessable("registration is cancelled")
		}

		active, err := s.accRepo.ListActiveByRegistration(ctx, reg.ID)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return apperrors.Conflict("registration already has an accommodation")
		}

		rt, err := s.hotelRepo.LockRoomTypeInEvent(ctx, eventID, input.RoomTypeID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.Unprocessable("room type does not belong to this event")
			}
			return err
		}
		if input.Guests > rt.Capacity {
			return apperrors.Unprocessable("too many guests for this room type")
		}
		if !rt.HasVacancy() {
			return apperrors.Conflict("no rooms left for this room type")
		}
		if err := s.hotelRepo.AdjustBookedRooms(ctx, rt.ID, 1); err != nil {
			return err
		}

		now := time.Now()
		a = &domain.Accommodation{
			ID:             uuid.New(),
			EventID:        eventID,
			RegistrationID: reg.ID,
			RoomTypeID:     rt.ID,
			CheckIn:        input.CheckIn,
			CheckOut:       input.CheckOut,
			Guests:         input.Guests,
			Status:         domain.AccommodationStatusReserved,
			Notes:          input.Notes,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return s.accRepo.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Get retrieves an accommodation of an event
func (s *AccommodationService) Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Accommodation, error) {
	return s.accRepo.GetByID(ctx, eventID, id)
}

// List lists the accommodations of an event
func (s *AccommodationService) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Accommodation, int64, error) {
	return s.accRepo.List(ctx, eventID, p)
}

// Update changes dates, guests, notes or status. Cancelling gives the room back.
func (s *AccommodationService) Update(ctx context.Context, eventID, id uuid.UUID, input *domain.AccommodationUpdateInput) (*domain.Accommodation, error) {
	var a *domain.Accommodation

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.accRepo.Lock(ctx, eventID, id)
		if err != nil {
			return err
		}

		cancelled := a.Status == domain.AccommodationStatusCancelled
		if cancelled && input.Status != nil && *input.Status != domain.AccommodationStatusCancelled {
			return apperrors.Unprocessable("a cancelled accommodation cannot be reopened")
		}

		if input.CheckIn != nil {
			a.CheckIn = *input.CheckIn
		}
		if input.CheckOut != nil {
			a.CheckOut = *input.CheckOut
		}
		if err := checkStay(a.CheckIn, a.CheckOut); err != nil {
			return err
		}
		if input.Notes != nil {
			a.Notes = *input.Notes
		}

		if input.Guests != nil && !cancelled {
			rt, err := s.hotelRepo.LockRoomTypeInEvent(ctx, eventID, a.RoomTypeID)
			if err != nil {
				return err
			}
			if *input.Guests > rt.Capacity {
				return apperrors.Unprocessable("too many guests for this room type")
			}
			a.Guests = *input.Guests
		}

		if input.Status != nil && *input.Status != a.Status {
			if *input.Status == domain.AccommodationStatusCancelled {
				if err := s.hotelRepo.AdjustBookedRooms(ctx, a.RoomTypeID, -1); err != nil {
					return err
				}
			}
			a.Status = *input.Status
		}
		a.UpdatedAt = time.Now()

		return s.accRepo.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an accommodation, giving its room back
func (s *AccommodationService) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		a, err := s.accRepo.Lock(ctx, eventID, id)
		if err != nil {
			return err
		}
		if a.Status != domain.AccommodationStatusCancelled {
			if err := s.hotelRepo.AdjustBookedRooms(ctx, a.RoomTypeID, -1); err != nil {
				return err
			}
		}
		return s.accRepo.Delete(ctx, eventID, id)
	})
}

// ReleaseForRegistration cancels the bookings of a registration. It joins
// the caller's transaction.
func (s *AccommodationService) ReleaseForRegistration(ctx context.Context, registrationID uuid.UUID) error {
	active, err := s.accRepo.ListActiveByRegistration(ctx, registrationID)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range active {
		a := &active[i]
		if err := s.hotelRepo.AdjustBookedRooms(ctx, a.RoomTypeID, -1); err != nil {
			return err
		}
		a.Status = domain.AccommodationStatusCancelled
		a.UpdatedAt = now
		if err := s.accRepo.Update(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
