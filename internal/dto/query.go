package dto

// EventQuery filters the event list
type EventQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	Q      string `query:"q" validate:"max=200"`
}

// SearchQuery is the free text filter of attendee and speaker lists
type SearchQuery struct {
	Q string `query:"q" validate:"max=200"`
}

// RegistrationQuery filters the registration list
type RegistrationQuery struct {
	Status        string `query:"status" validate:"omitempty,regstatus"`
	PaymentStatus string `query:"paymentStatus" validate:"omitempty,paystatus"`
	TicketTypeID  string `query:"ticketTypeId" validate:"omitempty,uuid"`
	Q             string `query:"q" validate:"max=200"`
}

// SessionQuery filters the session list
type SessionQuery struct {
	TrackID   string `query:"trackId" validate:"omitempty,uuid"`
	SpeakerID string `query:"speakerId" validate:"omitempty,uuid"`
}
