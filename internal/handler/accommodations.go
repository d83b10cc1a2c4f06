package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/dto"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

// HotelService manages hotels and their room types
type HotelService interface {
	Create(ctx context.Context, eventID uuid.UUID, input *domain.HotelInput) (*domain.Hotel, error)
	Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Hotel, error)
	Update(ctx context.Context, eventID, id uuid.UUID, input *domain.HotelUpdateInput) (*domain.Hotel, error)
	Delete(ctx context.Context, eventID, id uuid.UUID) error
	List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Hotel, int64, error)
	CreateRoomType(ctx context.Context, eventID, hotelID uuid.UUID, input *domain.RoomTypeInput) (*domain.RoomType, error)
	ListRoomTypes(ctx context.Context, eventID, hotelID uuid.UUID) ([]domain.RoomType, error)
	UpdateRoomType(ctx context.Context, eventID, hotelID, id uuid.UUID, input *domain.RoomTypeUpdateInput) (*domain.RoomType, error)
	DeleteRoomType(ctx context.Context, eventID, hotelID, id uuid.UUID) error
}

// AccommodationService books rooms for registrations
type AccommodationService interface {
	Create(ctx context.Context, eventID uuid.UUID, input *domain.AccommodationInput) (*domain.Accommodation, error)
	Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Accommodation, error)
	List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Accommodation, int64, error)
	Update(ctx context.Context, eventID, id uuid.UUID, input *domain.AccommodationUpdateInput) (*domain.Accommodation, error)
	Delete(ctx context.Context, eventID, id uuid.UUID) error
}

// AccommodationsHandler handles hotel, room type and accommodation endpoints
type AccommodationsHandler struct {
	hotels         HotelService
	accommodations AccommodationService
}

// NewAccommodationsHandler creates a new accommodations handler
func NewAccommodationsHandler(hotels HotelService, accommodations AccommodationService) *AccommodationsHandler {
	return &AccommodationsHandler{
		hotels:         hotels,
		accommodations: accommodations,
	}
}

// ListHotels handles GET /api/events/:eventId/hotels
func (h *AccommodationsHandler) ListHotels(c *fiber.Ctx) error {
	p := parsePagination(c)
	hotels, total, err := h.hotels.List(c.Context(), currentEvent(c).ID, p)
	if err != nil {
		return handleServiceError(c, err)
	}
	return listResponse(c, hotels, total, p)
}

// CreateHotel handles POST /api/events/:eventId/hotels
func (h *AccommodationsHandler) CreateHotel(c *fiber.Ctx) error {
	var input domain.HotelInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	hotel, err := h.hotels.Create(c.Context(), currentEvent(c).ID, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(hotel)
}

// GetHotel handles GET /api/events/:eventId/hotels/:hotelId
func (h *AccommodationsHandler) GetHotel(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "hotelId", "hotel")
	if err != nil {
		return handleServiceError(c, err)
	}

	hotel, err := h.hotels.Get(c.Context(), currentEvent(c).ID, id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(hotel)
}

// UpdateHotel handles PUT /api/events/:eventId/hotels/:hotelId
func (h *AccommodationsHandler) UpdateHotel(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "hotelId", "hotel")
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.HotelUpdateInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	hotel, err := h.hotels.Update(c.Context(), currentEvent(c).ID, id, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(hotel)
}

// DeleteHotel handles DELETE /api/events/:eventId/hotels/:hotelId
func (h *AccommodationsHandler) DeleteHotel(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "hotelId", "hotel")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.hotels.Delete(c.Context(), currentEvent(c).ID, id); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListRooms handles GET /api/events/:eventId/hotels/:hotelId/rooms
func (h *AccommodationsHandler) ListRooms(c *fiber.Ctx) error {
	hotelID, err := parseUUIDParam(c, "hotelId", "hotel")
	if err != nil {
		return handleServiceError(c, err)
	}

	rooms, err := h.hotels.ListRoomTypes(c.Context(), currentEvent(c).ID, hotelID)
	if err != nil {
		return handleServiceError(c, err)
	}
	if rooms == nil {
		rooms = []domain.RoomType{}
	}
	return c.JSON(fiber.Map{"data": rooms})
}

// CreateRoom handles POST /api/events/:eventId/hotels/:hotelId/rooms
func (h *AccommodationsHandler) CreateRoom(c *fiber.Ctx) error {
	hotelID, err := parseUUIDParam(c, "hotelId", "hotel")
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.RoomTypeInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	room, err := h.hotels.CreateRoomType(c.Context(), currentEvent(c).ID, hotelID, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

// UpdateRoom handles PUT /api/events/:eventId/hotels/:hotelId/rooms/:roomTypeId
func (h *AccommodationsHandler) UpdateRoom(c *fiber.Ctx) error {
	hotelID, roomID, err := roomParams(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.RoomTypeUpdateInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	room, err := h.hotels.UpdateRoomType(c.Context(), currentEvent(c).ID, hotelID, roomID, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(room)
}

// DeleteRoom handles DELETE /api/events/:eventId/hotels/:hotelId/rooms/:roomTypeId
func (h *AccommodationsHandler) DeleteRoom(c *fiber.Ctx) error {
	hotelID, roomID, err := roomParams(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.hotels.DeleteRoomType(c.Context(), currentEvent(c).ID, hotelID, roomID); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List handles GET /api/events/:eventId/accommodations
func (h *AccommodationsHandler) List(c *fiber.Ctx) error {
	p := parsePagination(c)
	items, total, err := h.accommodations.List(c.Context(), currentEvent(c).ID, p)
	if err != nil {
		return handleServiceError(c, err)
	}
	return listResponse(c, items, total, p)
}

// Create handles POST /api/events/:eventId/accommodations
func (h *AccommodationsHandler) Create(c *fiber.Ctx) error {
	var input domain.AccommodationInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	acc, err := h.accommodations.Create(c.Context(), currentEvent(c).ID, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(acc)
}

// Get handles GET /api/events/:eventId/accommodations/:id
func (h *AccommodationsHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id", "accommodation")
	if err != nil {
		return handleServiceError(c, err)
	}

	acc, err := h.accommodations.Get(c.Context(), currentEvent(c).ID, id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(acc)
}

// Update handles PUT /api/events/:eventId/accommodations/:id
func (h *AccommodationsHandler) Update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id", "accommodation")
	if err != nil {
		return handleServiceError(c, err)
	}

	var input domain.AccommodationUpdateInput
	if err := dto.ParseAndValidate(c, &input); err != nil {
		return handleServiceError(c, err)
	}

	acc, err := h.accommodations.Update(c.Context(), currentEvent(c).ID, id, &input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(acc)
}

// Delete handles DELETE /api/events/:eventId/accommodations/:id
func (h *AccommodationsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id", "accommodation")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := h.accommodations.Delete(c.Context(), currentEvent(c).ID, id); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func roomParams(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	hotelID, err := parseUUIDParam(c, "hotelId", "hotel")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	roomID, err := parseUUIDParam(c, "roomTypeId", "room type")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return hotelID, roomID, nil
}
