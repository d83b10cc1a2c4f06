package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
)

func TestHotelRepository_Booking(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}

	ctx := context.Background()
	hotels := NewHotelRepository(db)
	accommodations := NewAccommodationRepository(db)
	registrations := NewRegistrationRepository(db)

	event := seedEvent(t, db)
	ticket := seedTicket(t, db, event.ID, 0, 10)
	attendee := seedAttendee(t, db, event.ID, "guest@test.eventdesk.dev")
	reg := newTestRegistration(event.ID, attendee.ID, ticket, domain.RegistrationStatusConfirmed)
	require.NoError(t, registrations.Create(ctx, reg))

	now := time.Now()
	hotel := &domain.Hotel{ID: uuid.New(), EventID: event.ID, Name: "Hotel Adlon", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, hotels.Create(ctx, hotel))

	room := &domain.RoomType{
		ID:            uuid.New(),
		HotelID:       hotel.ID,
		Name:          "Double",
		PricePerNight: 18900,
		Currency:      "EUR",
		Capacity:      2,
		TotalRooms:    1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, hotels.CreateRoomType(ctx, room))

	checkIn := event.StartDate.Truncate(24 * time.Hour)
	booking := &domain.Accommodation{
		ID:             uuid.New(),
		EventID:        event.ID,
		RegistrationID: reg.ID,
		RoomTypeID:     room.ID,
		CheckIn:        checkIn,
		CheckOut:       checkIn.Add(48 * time.Hour),
		Guests:         2,
		Status:         domain.AccommodationStatusReserved,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := db.RunInTx(ctx, func(ctx context.Context) error {
		locked, err := hotels.LockRoomTypeInEvent(ctx, event.ID, room.ID)
		if err != nil {
			return err
		}
		assert.True(t, locked.HasVacancy())
		if err := hotels.AdjustBookedRooms(ctx, room.ID, 1); err != nil {
			return err
		}
		return accommodations.Create(ctx, booking)
	})
	require.NoError(t, err)

	t.Run("hotel includes room types", func(t *testing.T) {
		fetched, err := hotels.GetByID(ctx, event.ID, hotel.ID)
		require.NoError(t, err)
		require.Len(t, fetched.RoomTypes, 1)
		assert.Equal(t, 1, fetched.RoomTypes[0].BookedRooms)
	})

	t.Run("no rooms left", func(t *testing.T) {
		assert.True(t, apperrors.IsConflict(hotels.AdjustBookedRooms(ctx, room.ID, 1)))
	})

	t.Run("room type of another event is not found", func(t *testing.T) {
		_, err := hotels.LockRoomTypeInEvent(ctx, uuid.New(), room.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("one active accommodation per registration", func(t *testing.T) {
		dup := *booking
		dup.ID = uuid.New()
		assert.True(t, apperrors.IsConflict(accommodations.Create(ctx, &dup)))
	})

	t.Run("room type with bookings cannot be deleted", func(t *testing.T) {
		assert.True(t, apperrors.IsConflict(hotels.DeleteRoomType(ctx, hotel.ID, room.ID)))
	})

	t.Run("active bookings of a registration", func(t *testing.T) {
		active, err := accommodations.ListActiveByRegistration(ctx, reg.ID)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, 2, active[0].Nights())
	})
}
