package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/pkg/database"
)

// getTestDB returns a database connection for integration tests.
// Returns nil if the database is not available (skips tests). The pool is
// closed after the test's other cleanups have run.
// The schema in migrations/ must already be applied.
func getTestDB(t *testing.T) *database.PostgresDB {
	if os.Getenv("POSTGRES_TEST_HOST") == "" {
		t.Skip("Skipping integration test: POSTGRES_TEST_HOST not set")
		return nil
	}

	cfg := config.PostgresConfig{
		Host:     os.Getenv("POSTGRES_TEST_HOST"),
		Port:     5432,
		User:     os.Getenv("POSTGRES_TEST_USER"),
		Password: os.Getenv("POSTGRES_TEST_PASS"),
		Database: os.Getenv("POSTGRES_TEST_DB"),
		SSLMode:  "disable",
		MaxConns: 5,
		MinConns: 1,
	}

	if cfg.Database == "" {
		cfg.Database = "test_eventdesk"
	}
	if cfg.User == "" {
		cfg.User = "postgres"
	}

	db, err := database.NewPostgres(context.Background(), cfg)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to PostgreSQL: %v", err)
		return nil
	}
	t.Cleanup(db.Close)

	return db
}

// cleanupUsers removes test users from the database
func cleanupUsers(t *testing.T, db *database.PostgresDB, emails ...string) {
	ctx := context.Background()
	for _, email := range emails {
		_, _ = db.Pool.Exec(ctx, "DELETE FROM users WHERE email = $1", email)
	}
}

// cleanupOrgs removes test organizations, and everything under them, from the database
func cleanupOrgs(t *testing.T, db *database.PostgresDB, ids ...uuid.UUID) {
	ctx := context.Background()
	for _, id := range ids {
		_, _ = db.Pool.Exec(ctx, "DELETE FROM organizations WHERE id = $1", id)
	}
}

// createTestOrg builds an organization with a unique slug
func createTestOrg(name string) *domain.Organization {
	now := time.Now()
	return &domain.Organization{
		ID:        uuid.New(),
		Name:      name,
		Slug:      "test-org-" + uuid.New().String()[:8],
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// createTestUser builds a user with the given email
func createTestUser(email string) *domain.User {
	now := time.Now()
	return &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// seedEvent stores an organization and an event and registers cleanup
func seedEvent(t *testing.T, db *database.PostgresDB) *domain.Event {
	t.Helper()
	ctx := context.Background()

	org := createTestOrg("Test Org " + t.Name())
	require.NoError(t, NewOrgRepository(db).Create(ctx, org))
	t.Cleanup(func() { cleanupOrgs(t, db, org.ID) })

	now := time.Now().UTC().Truncate(time.Second)
	event := &domain.Event{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		Name:           "GopherCon",
		Slug:           "gophercon-" + uuid.New().String()[:8],
		Timezone:       "Europe/Berlin",
		StartDate:      now.Add(30 * 24 * time.Hour),
		EndDate:        now.Add(32 * 24 * time.Hour),
		Status:         domain.EventStatusPublished,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, NewEventRepository(db).Create(ctx, event))

	return event
}

// seedTicket stores a ticket type for an event
func seedTicket(t *testing.T, db *database.PostgresDB, eventID uuid.UUID, price int64, quantity int) *domain.TicketType {
	t.Helper()
	now := time.Now()
	ticket := &domain.TicketType{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      "General Admission",
		Price:     price,
		Currency:  "EUR",
		Quantity:  quantity,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, NewTicketRepository(db).Create(context.Background(), ticket))
	return ticket
}

// seedAttendee stores an attendee for an event
func seedAttendee(t *testing.T, db *database.PostgresDB, eventID uuid.UUID, email string) *domain.Attendee {
	t.Helper()
	now := time.Now()
	attendee := &domain.Attendee{
		ID:        uuid.New(),
		EventID:   eventID,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, NewAttendeeRepository(db).Create(context.Background(), attendee))
	return attendee
}
