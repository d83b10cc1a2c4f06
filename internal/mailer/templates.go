package mailer

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/eventdesk/eventdesk/api/internal/domain"
)

// InvitationData fills the invitation email
type InvitationData struct {
	OrganizationName string
	InviterName      string
	Role             string
	AcceptURL        string
	ExpiresAt        time.Time
}

// RegistrationData fills the registration emails
type RegistrationData struct {
	AttendeeName string
	EventName    string
	Venue        string
	StartDate    time.Time
	TicketName   string
	Amount       string
	ExpiresAt    *time.Time
}

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustTemplate(subject, body string) emailTemplate {
	return emailTemplate{
		subject: template.Must(template.New("subject").Parse(subject)),
		body:    template.Must(template.New("body").Parse(body)),
	}
}

var templates = map[domain.EmailTemplate]emailTemplate{
	domain.EmailInvitation: mustTemplate(
		`You have been invited to {{.OrganizationName}} on EventDesk`,
		`Hello,

{{.InviterName}} invited you to join {{.OrganizationName}} as {{.Role}}.

Accept the invitation: {{.AcceptURL}}

The link expires on {{.ExpiresAt.Format "2 Jan 2006 15:04 MST"}}.
`),
	domain.EmailRegistrationConfirmed: mustTemplate(
		`Your registration for {{.EventName}} is confirmed`,
		`Hello {{.AttendeeName}},

your registration for {{.EventName}} ({{.TicketName}}) is confirmed.
{{if .Venue}}
Venue: {{.Venue}}{{end}}
Starts: {{.StartDate.Format "Mon 2 Jan 2006 15:04 MST"}}

See you there!
`),
	domain.EmailRegistrationPending: mustTemplate(
		`Complete your registration for {{.EventName}}`,
		`Hello {{.AttendeeName}},

we are holding a {{.TicketName}} seat for {{.EventName}} for you.
Please pay {{.Amount}}{{if .ExpiresAt}} before {{.ExpiresAt.Format "2 Jan 2006 15:04 MST"}}{{end}}, otherwise the registration is cancelled.
`),
	domain.EmailRegistrationWaitlisted: mustTemplate(
		`You are on the waitlist for {{.EventName}}`,
		`Hello {{.AttendeeName}},

{{.TicketName}} for {{.EventName}} is sold out, so you have been added to the waitlist.
We will email you as soon as a seat frees up.
`),
	domain.EmailRegistrationCancelled: mustTemplate(
		`Your registration for {{.EventName}} was cancelled`,
		`Hello {{.AttendeeName}},

your registration for {{.EventName}} ({{.TicketName}}) was cancelled.
`),
	domain.EmailRegistrationCheckedIn: mustTemplate(
		`Welcome to {{.EventName}}`,
		`Hello {{.AttendeeName}},

you are checked in to {{.EventName}}. Enjoy the event!
`),
}

// Render builds the message for name addressed to to
func Render(name domain.EmailTemplate, to string, data any) (*Message, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, fmt.Errorf("unknown email template %q", name)
	}

	var subject, body bytes.Buffer
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("failed to render subject of %s: %w", name, err)
	}
	if err := tmpl.body.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("failed to render body of %s: %w", name, err)
	}

	return &Message{To: to, Subject: subject.String(), Body: body.String()}, nil
}

// FormatAmount renders minor units as "49.00 EUR"
func FormatAmount(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, currency)
}
