package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
	"github.com/eventdesk/eventdesk/api/internal/tasks"
)

// passthroughTx runs fn directly, counting calls
type passthroughTx struct {
	calls int
}

func (t *passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CreateSession(ctx context.Context, session *domain.UserSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockUserRepository) GetSessionByToken(ctx context.Context, token string) (*domain.UserSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserSession), args.Error(1)
}

func (m *MockUserRepository) DeleteSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockOrgRepository is a mock implementation of OrgRepository
type MockOrgRepository struct {
	mock.Mock
}

func (m *MockOrgRepository) Create(ctx context.Context, org *domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrgRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *MockOrgRepository) Lock(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrgRepository) Update(ctx context.Context, org *domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrgRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Organization, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Organization), args.Error(1)
}

func (m *MockOrgRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrgRepository) AddMember(ctx context.Context, member *domain.OrganizationMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockOrgRepository) GetMember(ctx context.Context, orgID, userID uuid.UUID) (*domain.OrganizationMember, error) {
	args := m.Called(ctx, orgID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrganizationMember), args.Error(1)
}

func (m *MockOrgRepository) ListMembers(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.OrganizationMember, int64, error) {
	args := m.Called(ctx, orgID, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.OrganizationMember), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrgRepository) CountMembersWithRole(ctx context.Context, orgID uuid.UUID, role domain.OrgRole) (int, error) {
	args := m.Called(ctx, orgID, role)
	return args.Int(0), args.Error(1)
}

func (m *MockOrgRepository) RemoveMember(ctx context.Context, orgID, userID uuid.UUID) error {
	args := m.Called(ctx, orgID, userID)
	return args.Error(0)
}

func (m *MockOrgRepository) UpdateMemberRole(ctx context.Context, orgID, userID uuid.UUID, role domain.OrgRole) error {
	args := m.Called(ctx, orgID, userID, role)
	return args.Error(0)
}

func (m *MockOrgRepository) CreateInvitation(ctx context.Context, invitation *domain.OrganizationInvitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *MockOrgRepository) GetInvitationByToken(ctx context.Context, token string) (*domain.OrganizationInvitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrganizationInvitation), args.Error(1)
}

func (m *MockOrgRepository) AcceptInvitation(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrgRepository) DeleteInvitation(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *MockOrgRepository) ListPendingInvitations(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.OrganizationInvitation, int64, error) {
	args := m.Called(ctx, orgID, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.OrganizationInvitation), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrgRepository) DeleteExpiredInvitations(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockAPIKeyRepository is a mock implementation of APIKeyRepository
type MockAPIKeyRepository struct {
	mock.Mock
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.APIKey, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) GetByPublicID(ctx context.Context, publicID string) (*domain.APIKey, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) ListByOrganizationID(ctx context.Context, orgID uuid.UUID, p pagination.Params) ([]domain.APIKey, int64, error) {
	args := m.Called(ctx, orgID, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.APIKey), args.Get(1).(int64), args.Error(2)
}

func (m *MockAPIKeyRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) CreateAuditLog(ctx context.Context, input *domain.AuditLogInput) (*domain.AuditLog, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditLog), args.Error(1)
}

func (m *MockAuditRepository) ListAuditLogs(ctx context.Context, filter *domain.AuditLogFilter) ([]domain.AuditLog, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.AuditLog), args.Get(1).(int64), args.Error(2)
}

func (m *MockAuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// recordingAuditLogger collects audit entries written in the background
type recordingAuditLogger struct {
	mu      sync.Mutex
	entries []*domain.AuditLogInput
	done    chan struct{}
}

func newRecordingAuditLogger() *recordingAuditLogger {
	return &recordingAuditLogger{done: make(chan struct{}, 16)}
}

func (l *recordingAuditLogger) Log(ctx context.Context, input *domain.AuditLogInput) (*domain.AuditLog, error) {
	l.mu.Lock()
	l.entries = append(l.entries, input)
	l.mu.Unlock()
	l.done <- struct{}{}
	return &domain.AuditLog{ID: uuid.New()}, nil
}

// wait blocks until n entries were written or a second passed
func (l *recordingAuditLogger) wait(n int) []*domain.AuditLogInput {
	deadline := time.After(time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-l.done:
		case <-deadline:
			i = n
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*domain.AuditLogInput(nil), l.entries...)
}

// MockTaskDispatcher is a mock implementation of TaskDispatcher and ExpiryScheduler
type MockTaskDispatcher struct {
	mock.Mock
}

func (m *MockTaskDispatcher) EnqueueInvitationEmail(ctx context.Context, payload *tasks.InvitationEmailPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockTaskDispatcher) EnqueueRegistrationEmail(ctx context.Context, payload *tasks.RegistrationEmailPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockTaskDispatcher) EnqueueExport(ctx context.Context, payload *tasks.ExportPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockTaskDispatcher) ScheduleExpiry(ctx context.Context, payload *tasks.RegistrationExpirePayload, at time.Time) error {
	args := m.Called(ctx, payload, at)
	return args.Error(0)
}

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, e *domain.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Event, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepository) Lock(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventRepository) Update(ctx context.Context, e *domain.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *MockEventRepository) List(ctx context.Context, filter *domain.EventFilter, p pagination.Params) ([]domain.Event, int64, error) {
	args := m.Called(ctx, filter, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Event), args.Get(1).(int64), args.Error(2)
}

func (m *MockEventRepository) SlugExists(ctx context.Context, orgID uuid.UUID, slug string) (bool, error) {
	args := m.Called(ctx, orgID, slug)
	return args.Bool(0), args.Error(1)
}

// MockReviewerRepository is a mock implementation of ReviewerRepository
type MockReviewerRepository struct {
	mock.Mock
}

func (m *MockReviewerRepository) Create(ctx context.Context, rv *domain.Reviewer) error {
	args := m.Called(ctx, rv)
	return args.Error(0)
}

func (m *MockReviewerRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Reviewer, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reviewer), args.Error(1)
}

func (m *MockReviewerRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	args := m.Called(ctx, eventID, id)
	return args.Error(0)
}

func (m *MockReviewerRepository) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Reviewer, int64, error) {
	args := m.Called(ctx, eventID, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Reviewer), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewerRepository) IsAssigned(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, eventID, userID)
	return args.Bool(0), args.Error(1)
}

// MockAttendeeRepository is a mock implementation of AttendeeRepository
type MockAttendeeRepository struct {
	mock.Mock
}

func (m *MockAttendeeRepository) Create(ctx context.Context, a *domain.Attendee) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAttendeeRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Attendee, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attendee), args.Error(1)
}

func (m *MockAttendeeRepository) GetByEmail(ctx context.Context, eventID uuid.UUID, email string) (*domain.Attendee, error) {
	args := m.Called(ctx, eventID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attendee), args.Error(1)
}

func (m *MockAttendeeRepository) Update(ctx context.Context, a *domain.Attendee) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAttendeeRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	args := m.Called(ctx, eventID, id)
	return args.Error(0)
}

func (m *MockAttendeeRepository) List(ctx context.Context, filter *domain.AttendeeFilter, p pagination.Params) ([]domain.Attendee, int64, error) {
	args := m.Called(ctx, filter, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Attendee), args.Get(1).(int64), args.Error(2)
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Create(ctx context.Context, t *domain.TicketType) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.TicketType, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketType), args.Error(1)
}

func (m *MockTicketRepository) Lock(ctx context.Context, eventID, id uuid.UUID) (*domain.TicketType, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketType), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, t *domain.TicketType) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTicketRepository) AdjustSold(ctx context.Context, id uuid.UUID, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockTicketRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	args := m.Called(ctx, eventID, id)
	return args.Error(0)
}

func (m *MockTicketRepository) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.TicketType, int64, error) {
	args := m.Called(ctx, eventID, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.TicketType), args.Get(1).(int64), args.Error(2)
}

// MockSpeakerRepository is a mock implementation of SpeakerRepository
type MockSpeakerRepository struct {
	mock.Mock
}

func (m *MockSpeakerRepository) Create(ctx context.Context, s *domain.Speaker) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSpeakerRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Speaker, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Speaker), args.Error(1)
}

func (m *MockSpeakerRepository) Update(ctx context.Context, s *domain.Speaker) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSpeakerRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	args := m.Called(ctx, eventID, id)
	return args.Error(0)
}

func (m *MockSpeakerRepository) List(ctx context.Context, eventID uuid.UUID, search string, p pagination.Params) ([]domain.Speaker, int64, error) {
	args := m.Called(ctx, eventID, search, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Speaker), args.Get(1).(int64), args.Error(2)
}

func (m *MockSpeakerRepository) CountInEvent(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) (int, error) {
	args := m.Called(ctx, eventID, ids)
	return args.Int(0), args.Error(1)
}

// MockTrackRepository is a mock implementation of TrackRepository
type MockTrackRepository struct {
	mock.Mock
}

func (m *MockTrackRepository) Create(ctx context.Context, t *domain.Track) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTrackRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Track, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Track), args.Error(1)
}

func (m *MockTrackRepository) Update(ctx context.Context, t *domain.Track) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTrackRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	args := m.Called(ctx, eventID, id)
	return args.Error(0)
}

func (m *MockTrackRepository) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Track, int64, error) {
	args := m.Called(ctx, eventID, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Track), args.Get(1).(int64), args.Error(2)
}

func (m *MockTrackRepository) ListAll(ctx context.Context, eventID uuid.UUID) ([]domain.Track, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Track), args.Error(1)
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, s *domain.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) Update(ctx context.Context, s *domain.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	args := m.Called(ctx, eventID, id)
	return args.Error(0)
}

func (m *MockSessionRepository) List(ctx context.Context, filter *domain.SessionFilter, p pagination.Params) ([]domain.Session, int64, error) {
	args := m.Called(ctx, filter, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Session), args.Get(1).(int64), args.Error(2)
}

func (m *MockSessionRepository) ListAll(ctx context.Context, eventID uuid.UUID) ([]domain.Session, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

// MockScheduleInvalidator is a mock implementation of ScheduleInvalidator
type MockScheduleInvalidator struct {
	mock.Mock
}

func (m *MockScheduleInvalidator) Invalidate(ctx context.Context, eventID uuid.UUID) {
	m.Called(ctx, eventID)
}

// MockWaitlistFiller is a mock implementation of WaitlistFiller
type MockWaitlistFiller struct {
	mock.Mock
}

func (m *MockWaitlistFiller) FillFromWaitlist(ctx context.Context, eventID, ticketTypeID uuid.UUID) (int, error) {
	args := m.Called(ctx, eventID, ticketTypeID)
	return args.Int(0), args.Error(1)
}

// MockScheduleCache is a mock implementation of ScheduleCache
type MockScheduleCache struct {
	mock.Mock
}

func (m *MockScheduleCache) GetJSON(ctx context.Context, owner, field string, dst interface{}) (bool, error) {
	args := m.Called(ctx, owner, field, dst)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduleCache) SetJSON(ctx context.Context, owner, field string, value interface{}) error {
	args := m.Called(ctx, owner, field, value)
	return args.Error(0)
}

func (m *MockScheduleCache) Invalidate(ctx context.Context, owner string) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

// MockRegistrationRepository is a mock implementation of RegistrationRepository
type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

func (m *MockRegistrationRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Registration, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) Lock(ctx context.Context, id uuid.UUID) (*domain.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) Update(ctx context.Context, reg *domain.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

func (m *MockRegistrationRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	args := m.Called(ctx, eventID, id)
	return args.Error(0)
}

func (m *MockRegistrationRepository) List(ctx context.Context, filter *domain.RegistrationFilter, p pagination.Params) ([]domain.Registration, int64, error) {
	args := m.Called(ctx, filter, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Registration), args.Get(1).(int64), args.Error(2)
}

func (m *MockRegistrationRepository) HasActiveForAttendee(ctx context.Context, eventID, attendeeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, eventID, attendeeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistrationRepository) CountSeated(ctx context.Context, eventID uuid.UUID) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

func (m *MockRegistrationRepository) NextWaitlisted(ctx context.Context, ticketTypeID uuid.UUID) (*domain.Registration, error) {
	args := m.Called(ctx, ticketTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) NextWaitlistedWithRoom(ctx context.Context, eventID uuid.UUID) (*domain.Registration, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) ListOverdueIDs(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, registrationID, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, registrationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) LockByProviderRef(ctx context.Context, provider, ref string) (*domain.Payment, error) {
	args := m.Called(ctx, provider, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]domain.Payment, error) {
	args := m.Called(ctx, registrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

// MockHotelRepository is a mock implementation of HotelRepository
type MockHotelRepository struct {
	mock.Mock
}

func (m *MockHotelRepository) Create(ctx context.Context, h *domain.Hotel) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockHotelRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Hotel, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hotel), args.Error(1)
}

func (m *MockHotelRepository) Update(ctx context.Context, h *domain.Hotel) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockHotelRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	args := m.Called(ctx, eventID, id)
	return args.Error(0)
}

func (m *MockHotelRepository) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Hotel, int64, error) {
	args := m.Called(ctx, eventID, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Hotel), args.Get(1).(int64), args.Error(2)
}

func (m *MockHotelRepository) CreateRoomType(ctx context.Context, rt *domain.RoomType) error {
	args := m.Called(ctx, rt)
	return args.Error(0)
}

func (m *MockHotelRepository) GetRoomType(ctx context.Context, hotelID, id uuid.UUID) (*domain.RoomType, error) {
	args := m.Called(ctx, hotelID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoomType), args.Error(1)
}

func (m *MockHotelRepository) LockRoomTypeInEvent(ctx context.Context, eventID, id uuid.UUID) (*domain.RoomType, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoomType), args.Error(1)
}

func (m *MockHotelRepository) UpdateRoomType(ctx context.Context, rt *domain.RoomType) error {
	args := m.Called(ctx, rt)
	return args.Error(0)
}

func (m *MockHotelRepository) AdjustBookedRooms(ctx context.Context, id uuid.UUID, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockHotelRepository) DeleteRoomType(ctx context.Context, hotelID, id uuid.UUID) error {
	args := m.Called(ctx, hotelID, id)
	return args.Error(0)
}

func (m *MockHotelRepository) ListRoomTypes(ctx context.Context, hotelID uuid.UUID) ([]domain.RoomType, error) {
	args := m.Called(ctx, hotelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoomType), args.Error(1)
}

// MockAccommodationRepository is a mock implementation of AccommodationRepository
type MockAccommodationRepository struct {
	mock.Mock
}

func (m *MockAccommodationRepository) Create(ctx context.Context, a *domain.Accommodation) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAccommodationRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Accommodation, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Accommodation), args.Error(1)
}

func (m *MockAccommodationRepository) Lock(ctx context.Context, eventID, id uuid.UUID) (*domain.Accommodation, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Accommodation), args.Error(1)
}

func (m *MockAccommodationRepository) Update(ctx context.Context, a *domain.Accommodation) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAccommodationRepository) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	args := m.Called(ctx, eventID, id)
	return args.Error(0)
}

func (m *MockAccommodationRepository) List(ctx context.Context, eventID uuid.UUID, p pagination.Params) ([]domain.Accommodation, int64, error) {
	args := m.Called(ctx, eventID, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Accommodation), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccommodationRepository) ListActiveByRegistration(ctx context.Context, registrationID uuid.UUID) ([]domain.Accommodation, error) {
	args := m.Called(ctx, registrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Accommodation), args.Error(1)
}

// MockExportRepository is a mock implementation of ExportRepository
type MockExportRepository struct {
	mock.Mock
}

func (m *MockExportRepository) Create(ctx context.Context, e *domain.Export) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExportRepository) GetByID(ctx context.Context, eventID, id uuid.UUID) (*domain.Export, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Export), args.Error(1)
}

func (m *MockExportRepository) Update(ctx context.Context, e *domain.Export) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// stubRows serves fixed export rows
type stubRows struct {
	rows []domain.ExportRow
	err  error
}

func (s *stubRows) StreamExportRows(ctx context.Context, eventID uuid.UUID, fn func(*domain.ExportRow) error) error {
	for i := range s.rows {
		if err := fn(&s.rows[i]); err != nil {
			return err
		}
	}
	return s.err
}

// memoryStore keeps uploaded objects in memory
type memoryStore struct {
	objects map[string][]byte
	putErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (s *memoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *memoryStore) PresignedURL(ctx context.Context, key, filename string) (string, error) {
	return "https://files.example.com/" + key + "?download=" + filename, nil
}

// recordingPublisher collects published registration changes
type recordingPublisher struct {
	mu      sync.Mutex
	changes []string
}

func (p *recordingPublisher) Publish(ctx context.Context, changeType string, reg *domain.Registration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, changeType+":"+string(reg.Status))
}
