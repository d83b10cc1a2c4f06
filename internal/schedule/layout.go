// Package schedule lays out event sessions on a fixed-hour day grid.
//
// Each session becomes a block positioned by its local start hour. Blocks
// that overlap are grouped into clusters and spread over side-by-side
// columns, one lane per track where possible.
package schedule

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/eventdesk/eventdesk/api/internal/domain"
)

// ErrInvalidGrid is returned when the grid options are inconsistent
var ErrInvalidGrid = errors.New("invalid schedule grid")

// Options describes the grid the blocks are placed on
type Options struct {
	GridStart  int `json:"gridStart"`
	GridEnd    int `json:"gridEnd"`
	HourHeight int `json:"hourHeight"`
	MinHeight  int `json:"minHeight"`
}

// Validate checks that the grid is a non-empty hour range of one day
func (o Options) Validate() error {
	switch {
	case o.GridStart < 0 || o.GridStart > 23:
		return ErrInvalidGrid
	case o.GridEnd <= o.GridStart || o.GridEnd > 24:
		return ErrInvalidGrid
	case o.HourHeight <= 0:
		return ErrInvalidGrid
	case o.MinHeight < 0:
		return ErrInvalidGrid
	}
	return nil
}

// Block is a positioned session
type Block struct {
	SessionID   uuid.UUID  `json:"sessionId"`
	Title       string     `json:"title"`
	TrackID     *uuid.UUID `json:"trackId,omitempty"`
	Room        string     `json:"room,omitempty"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     time.Time  `json:"endTime"`
	Top         float64    `json:"top"`
	Height      float64    `json:"height"`
	Column      int        `json:"column"`
	ColumnCount int        `json:"columnCount"`
}

// Day holds the blocks of one calendar day in the event's time zone
type Day struct {
	Date   string  `json:"date"`
	Blocks []Block `json:"blocks"`
}

// Schedule is the laid out program of an event
type Schedule struct {
	EventID  uuid.UUID `json:"eventId"`
	Timezone string    `json:"timezone"`
	Options  Options   `json:"grid"`
	Days     []Day     `json:"days"`
}

type item struct {
	block     Block
	bottom    float64
	trackRank int
	tracked   bool
}

// Layout computes the schedule of sessions. tracks provides the sort order
// of the tracks referenced by the sessions; unknown tracks sort last among
// tracked sessions.
func Layout(sessions []domain.Session, tracks []domain.Track, loc *time.Location, opts Options) ([]Day, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}

	rank := make(map[uuid.UUID]int, len(tracks))
	for _, t := range tracks {
		rank[t.ID] = t.SortOrder
	}

	byDay := make(map[string][]*item)
	for i := range sessions {
		s := &sessions[i]
		start := s.StartTime.In(loc)
		date := start.Format(time.DateOnly)

		it := position(s, start, opts)
		if s.TrackID != nil {
			it.tracked = true
			if r, ok := rank[*s.TrackID]; ok {
				it.trackRank = r
			} else {
				it.trackRank = int(^uint(0) >> 1)
			}
		}
		byDay[date] = append(byDay[date], it)
	}

	dates := make([]string, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	days := make([]Day, 0, len(dates))
	for _, d := range dates {
		items := byDay[d]
		for _, cluster := range clusters(items) {
			assignColumns(cluster)
		}

		blocks := make([]Block, 0, len(items))
		for _, it := range items {
			blocks = append(blocks, it.block)
		}
		sort.SliceStable(blocks, func(i, j int) bool {
			if blocks[i].Top != blocks[j].Top {
				return blocks[i].Top < blocks[j].Top
			}
			return blocks[i].Column < blocks[j].Column
		})
		days = append(days, Day{Date: d, Blocks: blocks})
	}

	return days, nil
}

// position computes top and height from fractional local hours
func position(s *domain.Session, start time.Time, opts Options) *item {
	startHour := fractionalHour(start)
	endHour := startHour + s.EndTime.Sub(s.StartTime).Hours()

	gridStart := float64(opts.GridStart)
	gridEnd := float64(opts.GridEnd)
	startHour = clamp(startHour, gridStart, gridEnd)
	endHour = clamp(endHour, gridStart, gridEnd)

	hh := float64(opts.HourHeight)
	top := (startHour - gridStart) * hh
	height := (endHour - startHour) * hh
	if height < float64(opts.MinHeight) {
		height = float64(opts.MinHeight)
	}

	return &item{
		block: Block{
			SessionID: s.ID,
			Title:     s.Title,
			TrackID:   s.TrackID,
			Room:      s.Room,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Top:       top,
			Height:    height,
		},
		bottom: top + height,
	}
}

func fractionalHour(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clusters groups blocks whose vertical extents overlap, transitively.
// Touching blocks do not overlap.
func clusters(items []*item) [][]*item {
	sorted := make([]*item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].block.Top != sorted[j].block.Top {
			return sorted[i].block.Top < sorted[j].block.Top
		}
		return sorted[i].bottom < sorted[j].bottom
	})

	var out [][]*item
	var current []*item
	var end float64
	for _, it := range sorted {
		if len(current) > 0 && it.block.Top >= end {
			out = append(out, current)
			current = nil
		}
		if len(current) == 0 || it.bottom > end {
			end = it.bottom
		}
		current = append(current, it)
	}
	if len(current) > 0 {
		out = append(out, current)
	}
	return out
}

type column struct {
	trackID *uuid.UUID
	bottom  float64
}

func sameTrack(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// assignColumns places every block of a cluster in the first free column
// of its own track, opening a new column when none is free.
func assignColumns(cluster []*item) {
	sort.SliceStable(cluster, func(i, j int) bool {
		a, b := cluster[i], cluster[j]
		if a.tracked != b.tracked {
			return a.tracked
		}
		if a.trackRank != b.trackRank {
			return a.trackRank < b.trackRank
		}
		if a.tracked && *a.block.TrackID != *b.block.TrackID {
			return a.block.TrackID.String() < b.block.TrackID.String()
		}
		return a.block.Top < b.block.Top
	})

	var columns []column
	for _, it := range cluster {
		placed := false
		for i := range columns {
			if sameTrack(columns[i].trackID, it.block.TrackID) && columns[i].bottom <= it.block.Top {
				columns[i].bottom = it.bottom
				it.block.Column = i
				placed = true
				break
			}
		}
		if !placed {
			it.block.Column = len(columns)
			columns = append(columns, column{trackID: it.block.TrackID, bottom: it.bottom})
		}
	}

	for _, it := range cluster {
		it.block.ColumnCount = len(columns)
	}
}
