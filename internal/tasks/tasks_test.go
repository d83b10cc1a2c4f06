package tasks

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/eventdesk/api/internal/domain"
)

func TestNewRegistrationEmailTask(t *testing.T) {
	payload := &RegistrationEmailPayload{
		RegistrationID: uuid.New(),
		EventID:        uuid.New(),
		Template:       domain.EmailRegistrationConfirmed,
	}

	task, err := NewRegistrationEmailTask(payload)
	require.NoError(t, err)
	assert.Equal(t, TypeRegistrationEmail, task.Type())

	var decoded RegistrationEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, *payload, decoded)
}

func TestTaskTypes(t *testing.T) {
	expire, err := NewRegistrationExpireTask(&RegistrationExpirePayload{RegistrationID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, "registration:expire", expire.Type())

	export, err := NewExportTask(&ExportPayload{ExportID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, "export:registrations", export.Type())

	invite, err := NewInvitationEmailTask(&InvitationEmailPayload{Email: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "email:invitation", invite.Type())
}
