package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/eventdesk/api/internal/domain"
)

var defaultGrid = Options{GridStart: 8, GridEnd: 20, HourHeight: 64, MinHeight: 24}

func session(title string, start time.Time, d time.Duration, track *uuid.UUID) domain.Session {
	return domain.Session{
		ID:        uuid.New(),
		Title:     title,
		StartTime: start,
		EndTime:   start.Add(d),
		TrackID:   track,
	}
}

func blockByTitle(t *testing.T, day Day, title string) Block {
	t.Helper()
	for _, b := range day.Blocks {
		if b.Title == title {
			return b
		}
	}
	t.Fatalf("block %q not found", title)
	return Block{}
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, defaultGrid.Validate())
	assert.NoError(t, Options{GridStart: 0, GridEnd: 24, HourHeight: 1}.Validate())

	invalid := []Options{
		{GridStart: -1, GridEnd: 20, HourHeight: 64},
		{GridStart: 10, GridEnd: 10, HourHeight: 64},
		{GridStart: 8, GridEnd: 25, HourHeight: 64},
		{GridStart: 8, GridEnd: 20, HourHeight: 0},
		{GridStart: 8, GridEnd: 20, HourHeight: 64, MinHeight: -1},
	}
	for _, o := range invalid {
		assert.ErrorIs(t, o.Validate(), ErrInvalidGrid)
	}
}

func TestLayout_Positions(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 09:30 local, 90 minutes
	keynote := session("Keynote", time.Date(2026, 11, 3, 8, 30, 0, 0, time.UTC), 90*time.Minute, nil)
	// 10 minutes is below the minimum block height
	lightning := session("Lightning", time.Date(2026, 11, 3, 14, 0, 0, 0, time.UTC), 10*time.Minute, nil)

	days, err := Layout([]domain.Session{keynote, lightning}, nil, berlin, defaultGrid)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2026-11-03", days[0].Date)

	k := blockByTitle(t, days[0], "Keynote")
	assert.InDelta(t, 1.5*64, k.Top, 0.001)
	assert.InDelta(t, 1.5*64, k.Height, 0.001)
	assert.Equal(t, 0, k.Column)
	assert.Equal(t, 1, k.ColumnCount)

	l := blockByTitle(t, days[0], "Lightning")
	assert.InDelta(t, 7*64, l.Top, 0.001)
	assert.InDelta(t, 24, l.Height, 0.001)
}

func TestLayout_ClampsToGrid(t *testing.T) {
	early := session("Breakfast", time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC), 2*time.Hour, nil)
	late := session("Party", time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC), 4*time.Hour, nil)

	days, err := Layout([]domain.Session{early, late}, nil, time.UTC, defaultGrid)
	require.NoError(t, err)
	require.Len(t, days, 1)

	b := blockByTitle(t, days[0], "Breakfast")
	assert.InDelta(t, 0, b.Top, 0.001)
	assert.InDelta(t, 64, b.Height, 0.001)

	p := blockByTitle(t, days[0], "Party")
	assert.InDelta(t, 11*64, p.Top, 0.001)
	assert.InDelta(t, 64, p.Height, 0.001)
}

func TestLayout_DaysInEventTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 23:30 UTC on the 1st is 08:30 on the 2nd in Tokyo
	s1 := session("Morning", time.Date(2026, 5, 1, 23, 30, 0, 0, time.UTC), time.Hour, nil)
	s2 := session("Afternoon", time.Date(2026, 5, 2, 5, 0, 0, 0, time.UTC), time.Hour, nil)
	s3 := session("Next day", time.Date(2026, 5, 3, 1, 0, 0, 0, time.UTC), time.Hour, nil)

	days, err := Layout([]domain.Session{s3, s1, s2}, nil, tokyo, defaultGrid)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-05-02", days[0].Date)
	assert.Len(t, days[0].Blocks, 2)
	assert.Equal(t, "Morning", days[0].Blocks[0].Title)
	assert.Equal(t, "2026-05-03", days[1].Date)
}

func TestLayout_ColumnsByTrack(t *testing.T) {
	trackA := uuid.New()
	trackB := uuid.New()
	tracks := []domain.Track{
		{ID: trackB, SortOrder: 2},
		{ID: trackA, SortOrder: 1},
	}

	day := func(h, m int) time.Time { return time.Date(2026, 6, 10, h, m, 0, 0, time.UTC) }
	sessions := []domain.Session{
		session("B1", day(9, 0), time.Hour, &trackB),
		session("A1", day(9, 0), time.Hour, &trackA),
		session("A2", day(10, 0), time.Hour, &trackA),
		session("Open", day(9, 30), time.Hour, nil),
		session("A3", day(9, 30), time.Hour, &trackA),
		session("Lunch", day(13, 0), time.Hour, nil),
	}

	days, err := Layout(sessions, tracks, time.UTC, defaultGrid)
	require.NoError(t, err)
	require.Len(t, days, 1)
	d := days[0]

	// A1, A3, A2 share track A: A1 and A2 stack in one column, A3 overlaps both
	assert.Equal(t, 0, blockByTitle(t, d, "A1").Column)
	assert.Equal(t, 0, blockByTitle(t, d, "A2").Column)
	assert.Equal(t, 1, blockByTitle(t, d, "A3").Column)
	assert.Equal(t, 2, blockByTitle(t, d, "B1").Column)
	assert.Equal(t, 3, blockByTitle(t, d, "Open").Column)
	for _, title := range []string{"A1", "A2", "A3", "B1", "Open"} {
		assert.Equal(t, 4, blockByTitle(t, d, title).ColumnCount, title)
	}

	lunch := blockByTitle(t, d, "Lunch")
	assert.Equal(t, 0, lunch.Column)
	assert.Equal(t, 1, lunch.ColumnCount)
}

func TestLayout_TouchingBlocksDoNotOverlap(t *testing.T) {
	day := func(h int) time.Time { return time.Date(2026, 6, 10, h, 0, 0, 0, time.UTC) }
	trackA := uuid.New()
	trackB := uuid.New()

	days, err := Layout([]domain.Session{
		session("First", day(9), time.Hour, &trackA),
		session("Second", day(10), time.Hour, &trackB),
	}, nil, time.UTC, defaultGrid)
	require.NoError(t, err)

	for _, b := range days[0].Blocks {
		assert.Equal(t, 0, b.Column)
		assert.Equal(t, 1, b.ColumnCount)
	}
}

func TestLayout_InvalidGrid(t *testing.T) {
	_, err := Layout(nil, nil, time.UTC, Options{GridStart: 20, GridEnd: 8, HourHeight: 64})
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestLayout_Empty(t *testing.T) {
	days, err := Layout(nil, nil, nil, defaultGrid)
	require.NoError(t, err)
	assert.Empty(t, days)
}
