package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/eventdesk/api/internal/domain"
)

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)

	created := time.Date(2026, 10, 1, 12, 30, 0, 0, time.UTC)
	checkedIn := created.Add(48 * time.Hour)
	id := uuid.New()

	require.NoError(t, w.Write(&domain.ExportRow{
		RegistrationID: id,
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Email:          "ada@example.com",
		Company:        `Analytical "Engines", Ltd`,
		TicketName:     "Early Bird",
		Status:         "CHECKED_IN",
		PaymentStatus:  "PAID",
		Amount:         4905,
		Currency:       "EUR",
		CreatedAt:      created,
		CheckedInAt:    &checkedIn,
	}))
	require.NoError(t, w.Write(&domain.ExportRow{
		RegistrationID: uuid.New(),
		FirstName:      "Bob",
		Status:         "WAITLISTED",
		PaymentStatus:  "UNPAID",
		Currency:       "EUR",
		CreatedAt:      created,
	}))
	require.NoError(t, w.Flush())
	assert.Equal(t, 2, w.Rows())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Header, records[0])
	assert.Equal(t, id.String(), records[1][0])
	assert.Equal(t, `Analytical "Engines", Ltd`, records[1][4])
	assert.Equal(t, "49.05", records[1][8])
	assert.Equal(t, "2026-10-01T12:30:00Z", records[1][10])
	assert.Equal(t, "2026-10-03T12:30:00Z", records[1][11])
	assert.Equal(t, "0.00", records[2][8])
	assert.Equal(t, "", records[2][11])
}

func TestWriter_Quoting(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)

	require.NoError(t, w.Write(&domain.ExportRow{
		RegistrationID: uuid.Nil,
		FirstName:      "Line\nBreak",
		CreatedAt:      time.Unix(0, 0),
	}))
	require.NoError(t, w.Flush())

	assert.Contains(t, buf.String(), "\"Line\nBreak\"")
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "0.00", formatMinor(0))
	assert.Equal(t, "0.07", formatMinor(7))
	assert.Equal(t, "12.30", formatMinor(1230))
	assert.Equal(t, "-2.50", formatMinor(-250))
}
