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
	"github.com/eventdesk/eventdesk/api/internal/pkg/pagination"
)

func TestEventRepository(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}

	repo := NewEventRepository(db)
	ctx := context.Background()

	event := seedEvent(t, db)

	t.Run("create then fetch", func(t *testing.T) {
		fetched, err := repo.GetByID(ctx, event.OrganizationID, event.ID)
		require.NoError(t, err)
		assert.Equal(t, event.Slug, fetched.Slug)
		assert.Equal(t, "Europe/Berlin", fetched.Timezone)
		assert.True(t, event.StartDate.Equal(fetched.StartDate))
	})

	t.Run("scoped to the organization", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New(), event.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("lock unknown event", func(t *testing.T) {
		err := db.RunInTx(ctx, func(ctx context.Context) error {
			return repo.Lock(ctx, uuid.New())
		})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("slug unique per organization", func(t *testing.T) {
		exists, err := repo.SlugExists(ctx, event.OrganizationID, event.Slug)
		require.NoError(t, err)
		assert.True(t, exists)

		dup := *event
		dup.ID = uuid.New()
		err = repo.Create(ctx, &dup)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		bad := *event
		bad.ID = uuid.New()
		bad.Slug = "bad-" + uuid.New().String()[:8]
		bad.EndDate = bad.StartDate.Add(-time.Hour)
		assert.Error(t, repo.Create(ctx, &bad))
	})

	t.Run("update", func(t *testing.T) {
		event.Name = "GopherCon EU"
		event.Capacity = 300
		require.NoError(t, repo.Update(ctx, event))

		fetched, err := repo.Get(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, "GopherCon EU", fetched.Name)
		assert.Equal(t, 300, fetched.Capacity)
	})

	t.Run("list with search and reviewer filter", func(t *testing.T) {
		events, total, err := repo.List(ctx, &domain.EventFilter{
			OrganizationID: event.OrganizationID,
			Search:         "gophercon",
		}, pagination.New(10, 0))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, events, 1)

		reviewer := uuid.New()
		events, total, err = repo.List(ctx, &domain.EventFilter{
			OrganizationID: event.OrganizationID,
			ReviewerUserID: &reviewer,
		}, pagination.New(10, 0))
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, events)
	})

	t.Run("delete then fetch", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, event.OrganizationID, event.ID))

		_, err := repo.Get(ctx, event.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
