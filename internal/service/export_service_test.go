package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/tasks"
)

func exportRows() []domain.ExportRow {
	created := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	return []domain.ExportRow{
		{RegistrationID: uuid.New(), FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", TicketName: "Standard", Status: "CONFIRMED", PaymentStatus: "PAID", Amount: 9900, Currency: "EUR", CreatedAt: created},
		{RegistrationID: uuid.New(), FirstName: "Rob", Email: "rob@example.com", TicketName: "Free", Status: "WAITLISTED", PaymentStatus: "UNPAID", Currency: "EUR", CreatedAt: created},
	}
}

func TestExportService_WriteCSV(t *testing.T) {
	svc := NewExportService(zap.NewNop(), nil, &stubRows{rows: exportRows()}, nil, nil)

	var buf bytes.Buffer
	n, err := svc.WriteCSV(context.Background(), uuid.New(), &buf)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "ada@example.com")
	assert.Contains(t, lines[1], "99.00")
}

func TestExportService_Create(t *testing.T) {
	ctx := context.Background()
	event := &domain.Event{ID: uuid.New(), OrganizationID: uuid.New(), Name: "GopherCon"}

	t.Run("records and queues export", func(t *testing.T) {
		repo := new(MockExportRepository)
		dispatcher := new(MockTaskDispatcher)
		audit := newRecordingAuditLogger()
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Export")).Return(nil)
		dispatcher.On("EnqueueExport", mock.Anything, mock.MatchedBy(func(p *tasks.ExportPayload) bool {
			return p.EventID == event.ID
		})).Return(nil)

		svc := NewExportService(zap.NewNop(), repo, nil, nil, dispatcher)
		svc.SetAuditLogger(audit)

		e, err := svc.Create(ctx, event, userActor(uuid.New()))

		require.NoError(t, err)
		assert.Equal(t, domain.ExportStatusPending, e.Status)
		entries := audit.wait(1)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.AuditActionDataExported, entries[0].Action)
	})

	t.Run("enqueue failure marks export failed", func(t *testing.T) {
		repo := new(MockExportRepository)
		dispatcher := new(MockTaskDispatcher)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(e *domain.Export) bool {
			return e.Status == domain.ExportStatusFailed && e.Error == "redis down"
		})).Return(nil)
		dispatcher.On("EnqueueExport", mock.Anything, mock.Anything).Return(errors.New("redis down"))

		_, err := NewExportService(zap.NewNop(), repo, nil, nil, dispatcher).Create(ctx, event, userActor(uuid.New()))

		require.Error(t, err)
		repo.AssertExpectations(t)
	})
}

func TestExportService_Run(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()

	t.Run("uploads csv and completes", func(t *testing.T) {
		repo := new(MockExportRepository)
		store := newMemoryStore()
		e := &domain.Export{ID: uuid.New(), EventID: eventID, Status: domain.ExportStatusPending}
		repo.On("GetByID", mock.Anything, eventID, e.ID).Return(e, nil)
		repo.On("Update", mock.Anything, e).Return(nil)

		svc := NewExportService(zap.NewNop(), repo, &stubRows{rows: exportRows()}, store, nil)
		require.NoError(t, svc.Run(ctx, eventID, e.ID))

		assert.Equal(t, domain.ExportStatusCompleted, e.Status)
		assert.Equal(t, 2, e.RowCount)
		assert.NotNil(t, e.CompletedAt)
		key := "exports/" + eventID.String() + "/" + e.ID.String() + ".csv"
		assert.Equal(t, key, e.ObjectKey)
		assert.Contains(t, string(store.objects[key]), "rob@example.com")
	})

	t.Run("completed export is not rerun", func(t *testing.T) {
		repo := new(MockExportRepository)
		e := &domain.Export{ID: uuid.New(), EventID: eventID, Status: domain.ExportStatusCompleted}
		repo.On("GetByID", mock.Anything, eventID, e.ID).Return(e, nil)

		require.NoError(t, NewExportService(zap.NewNop(), repo, nil, nil, nil).Run(ctx, eventID, e.ID))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("row failure marks export failed", func(t *testing.T) {
		repo := new(MockExportRepository)
		e := &domain.Export{ID: uuid.New(), EventID: eventID, Status: domain.ExportStatusPending}
		repo.On("GetByID", mock.Anything, eventID, e.ID).Return(e, nil)
		repo.On("Update", mock.Anything, e).Return(nil)

		err := NewExportService(zap.NewNop(), repo, &stubRows{err: errors.New("connection reset")}, newMemoryStore(), nil).Run(ctx, eventID, e.ID)

		require.Error(t, err)
		assert.Equal(t, domain.ExportStatusFailed, e.Status)
		assert.Equal(t, "connection reset", e.Error)
	})

	t.Run("upload failure marks export failed", func(t *testing.T) {
		repo := new(MockExportRepository)
		store := newMemoryStore()
		store.putErr = errors.New("bucket missing")
		e := &domain.Export{ID: uuid.New(), EventID: eventID, Status: domain.ExportStatusPending}
		repo.On("GetByID", mock.Anything, eventID, e.ID).Return(e, nil)
		repo.On("Update", mock.Anything, e).Return(nil)

		err := NewExportService(zap.NewNop(), repo, &stubRows{rows: exportRows()}, store, nil).Run(ctx, eventID, e.ID)

		require.Error(t, err)
		assert.Equal(t, domain.ExportStatusFailed, e.Status)
	})
}

func TestExportService_Get(t *testing.T) {
	eventID := uuid.New()
	repo := new(MockExportRepository)
	done := &domain.Export{ID: uuid.New(), EventID: eventID, Status: domain.ExportStatusCompleted, ObjectKey: "exports/x.csv"}
	running := &domain.Export{ID: uuid.New(), EventID: eventID, Status: domain.ExportStatusRunning}
	repo.On("GetByID", mock.Anything, eventID, done.ID).Return(done, nil)
	repo.On("GetByID", mock.Anything, eventID, running.ID).Return(running, nil)

	svc := NewExportService(zap.NewNop(), repo, nil, newMemoryStore(), nil)

	got, err := svc.Get(context.Background(), eventID, done.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/exports/x.csv?download=registrations-"+eventID.String()+".csv", got.DownloadURL)

	got, err = svc.Get(context.Background(), eventID, running.ID)
	require.NoError(t, err)
	assert.Empty(t, got.DownloadURL)
}
