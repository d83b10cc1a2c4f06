package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
	"github.com/eventdesk/eventdesk/api/internal/testutil"
)

// MockAttendeeService mocks the attendee service.
type MockAttendeeService struct {
	mock.Mock
}

func (m *MockAttendeeService) Create(ctx context.Context, eventID uuid.UUID, input *domain.AttendeeInput) (*domain.Attendee, error) {
	args := m.Called(ctx, eventID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attendee), args.Error(1)
}

func (m *MockAttendeeService) Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Attendee, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attendee), args.Error(1)
}

func (m *MockAttendeeService) Update(ctx context.Context, eventID, id uuid.UUID, input *domain.AttendeeUpdateInput) (*domain.Attendee, error) {
	args := m.Called(ctx, eventID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attendee), args.Error(1)
}

func (m *MockAttendeeService) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	return m.Called(ctx, eventID, id).Error(0)
}

func (m *MockAttendeeService) List(ctx context.Context, eventID uuid.UUID, search string, p pagination.Params) ([]domain.Attendee, int64, error) {
	args := m.Called(ctx, eventID, search, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Attendee), args.Get(1).(int64), args.Error(2)
}

// MockTicketService mocks the ticket service.
type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) Create(ctx context.Context, eventID uuid.UUID, input *domain.TicketTypeInput) (*domain.TicketType, error) {
	args := m.Called(ctx, eventID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketType), args.Error(1)
}

func (m *MockTicketService) Get(ctx context.Context, eventID, id uuid.UUID) (*domain.TicketType, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketType), args.Error(1)
}

func (m *MockTicketService) Update(ctx context.Context, eventID, id uuid.UUID, input *domain.TicketTypeUpdateInput) (*domain.TicketType, error) {
	args := m.Called(ctx, eventID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketType), args.Error(1)
}

func (m *MockTicketService) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	return m.Called(ctx, eventID, id).Error(0)
}

func (m *MockTicketService) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.TicketType, int64, error) {
	args := m.Called(ctx, eventID, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.TicketType), args.Get(1).(int64), args.Error(2)
}

// MockAccommodationService mocks room bookings.
type MockAccommodationService struct {
	mock.Mock
}

func (m *MockAccommodationService) Create(ctx context.Context, eventID uuid.UUID, input *domain.AccommodationInput) (*domain.Accommodation, error) {
	args := m.Called(ctx, eventID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Accommodation), args.Error(1)
}

func (m *MockAccommodationService) Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Accommodation, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Accommodation), args.Error(1)
}

func (m *MockAccommodationService) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Accommodation, int64, error) {
	args := m.Called(ctx, eventID, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Accommodation), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccommodationService) Update(ctx context.Context, eventID, id uuid.UUID, input *domain.AccommodationUpdateInput) (*domain.Accommodation, error) {
	args := m.Called(ctx, eventID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Accommodation), args.Error(1)
}

func (m *MockAccommodationService) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	return m.Called(ctx, eventID, id).Error(0)
}

// MockReviewerService mocks reviewer assignment.
type MockReviewerService struct {
	mock.Mock
}

func (m *MockReviewerService) Assign(ctx context.Context, event *domain.Event, input *domain.ReviewerInput) (*domain.Reviewer, error) {
	args := m.Called(ctx, event, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reviewer), args.Error(1)
}

func (m *MockReviewerService) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Reviewer, int64, error) {
	args := m.Called(ctx, eventID, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Reviewer), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewerService) Remove(ctx context.Context, eventID, id uuid.UUID) error {
	return m.Called(ctx, eventID, id).Error(0)
}

func TestAttendeesHandler(t *testing.T) {
	orgID := uuid.New()
	a := newEventTestApp(testutil.TestMemberMiddleware(uuid.New(), orgID, domain.OrgRoleOrganizer))
	event := testutil.NewTestEvent(orgID)
	a.expectEvent(event)

	svc := new(MockAttendeeService)
	h := NewAttendeesHandler(svc)
	a.scoped.Get("/attendees", h.List)
	a.scoped.Post("/attendees", h.Create)
	a.scoped.Get("/attendees/:attendeeId", h.Get)

	attendee := testutil.NewTestAttendee(event.ID)
	svc.On("List", mock.Anything, event.ID, "acme", pagination.New(0, 0)).Return([]domain.Attendee{*attendee}, int64(1), nil)
	svc.On("Create", mock.Anything, event.ID, mock.Anything).Return(nil, apperrors.Conflict("an attendee with this email already exists for the event"))
	svc.On("Get", mock.Anything, event.ID, attendee.ID).Return(attendee, nil)
	base := "/api/events/" + event.ID.String() + "/attendees"

	resp, err := a.app.Test(httptest.NewRequest("GET", base+"?q=acme", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var page pagination.Page[domain.Attendee]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, int64(1), page.TotalCount)
	assert.False(t, page.HasMore)

	resp, err = a.app.Test(jsonRequest("POST", base, map[string]string{"firstName": "Ada", "email": "ada@example.com"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, err = a.app.Test(httptest.NewRequest("GET", base+"/"+attendee.ID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = a.app.Test(httptest.NewRequest("GET", base+"/123", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTicketsHandler(t *testing.T) {
	orgID := uuid.New()
	a := newEventTestApp(testutil.TestMemberMiddleware(uuid.New(), orgID, domain.OrgRoleOrganizer))
	event := testutil.NewTestEvent(orgID)
	a.expectEvent(event)

	svc := new(MockTicketService)
	h := NewTicketsHandler(svc)
	a.scoped.Post("/tickets", h.Create)
	a.scoped.Put("/tickets/:ticketId", h.Update)
	a.scoped.Delete("/tickets/:ticketId", h.Delete)

	ticket := testutil.NewTestTicketType(event.ID)
	ticket.Sold = 100
	svc.On("Create", mock.Anything, event.ID, mock.MatchedBy(func(in *domain.TicketTypeInput) bool {
		return in.Currency == "EUR" && in.Price == 9900
	})).Return(ticket, nil)
	lower := 10
	svc.On("Update", mock.Anything, event.ID, ticket.ID, &domain.TicketTypeUpdateInput{Quantity: &lower}).
		Return(nil, apperrors.Conflict("quantity cannot be lower than the number of tickets sold"))
	svc.On("Delete", mock.Anything, event.ID, ticket.ID).Return(apperrors.Conflict("ticket type has registrations"))
	base := "/api/events/" + event.ID.String() + "/tickets"

	resp, err := a.app.Test(jsonRequest("POST", base, map[string]any{
		"name": "General Admission", "price": 9900, "currency": "EUR", "quantity": 100,
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["soldOut"])
	assert.Equal(t, float64(0), body["available"])

	resp, err = a.app.Test(jsonRequest("POST", base, map[string]any{
		"name": "General Admission", "price": -1, "currency": "EUR",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = a.app.Test(jsonRequest("PUT", base+"/"+ticket.ID.String(), map[string]any{"quantity": 10}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, err = a.app.Test(httptest.NewRequest("DELETE", base+"/"+ticket.ID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAccommodationsHandler(t *testing.T) {
	orgID := uuid.New()
	a := newEventTestApp(testutil.TestMemberMiddleware(uuid.New(), orgID, domain.OrgRoleOrganizer))
	event := testutil.NewTestEvent(orgID)
	a.expectEvent(event)

	svc := new(MockAccommodationService)
	h := NewAccommodationsHandler(nil, svc)
	a.scoped.Post("/accommodations", h.Create)
	a.scoped.Delete("/accommodations/:id", h.Delete)

	svc.On("Create", mock.Anything, event.ID, mock.Anything).Return(nil, apperrors.Conflict("no rooms left for this room type"))
	accID := uuid.New()
	svc.On("Delete", mock.Anything, event.ID, accID).Return(nil)
	base := "/api/events/" + event.ID.String() + "/accommodations"
	checkIn := time.Date(2026, 11, 4, 15, 0, 0, 0, time.UTC)

	resp, err := a.app.Test(jsonRequest("POST", base, map[string]any{
		"registrationId": uuid.New(),
		"roomTypeId":     uuid.New(),
		"checkIn":        checkIn,
		"checkOut":       checkIn.Add(48 * time.Hour),
		"guests":         1,
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, err = a.app.Test(jsonRequest("POST", base, map[string]any{
		"registrationId": uuid.New(),
		"roomTypeId":     uuid.New(),
		"checkIn":        checkIn,
		"checkOut":       checkIn.Add(-24 * time.Hour),
		"guests":         1,
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = a.app.Test(httptest.NewRequest("DELETE", base+"/"+accID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestReviewersHandler(t *testing.T) {
	orgID := uuid.New()
	a := newEventTestApp(testutil.TestMemberMiddleware(uuid.New(), orgID, domain.OrgRoleAdmin))
	event := testutil.NewTestEvent(orgID)
	a.expectEvent(event)

	svc := new(MockReviewerService)
	h := NewReviewersHandler(svc)
	a.scoped.Post("/reviewers", h.Assign)

	userID := uuid.New()
	svc.On("Assign", mock.Anything, event, &domain.ReviewerInput{UserID: userID}).
		Return(&domain.Reviewer{ID: uuid.New(), EventID: event.ID, UserID: userID}, nil)

	resp, err := a.app.Test(jsonRequest("POST", "/api/events/"+event.ID.String()+"/reviewers", map[string]any{"userId": userID}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	svc.AssertExpectations(t)
}
