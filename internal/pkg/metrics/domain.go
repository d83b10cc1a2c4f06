package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_registrations_total",
			Help: "Registrations created, by initial status",
		},
		[]string{"status"},
	)

	registrationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_registration_transitions_total",
			Help: "Registration status transitions",
		},
		[]string{"from", "to"},
	)

	checkInsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventdesk_check_ins_total",
			Help: "Attendees checked in",
		},
	)

	paymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_payments_total",
			Help: "Payment status changes, by provider and status",
		},
		[]string{"provider", "status"},
	)

	emailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_emails_total",
			Help: "Emails sent, by template and result",
		},
		[]string{"template", "result"},
	)

	scheduleCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_schedule_cache_total",
			Help: "Schedule layout cache lookups",
		},
		[]string{"result"},
	)
)

// RecordRegistration counts a newly created registration
func RecordRegistration(status string) {
	registrationsTotal.WithLabelValues(status).Inc()
}

// RecordTransition counts a registration status change
func RecordTransition(from, to string) {
	registrationTransitions.WithLabelValues(from, to).Inc()
	if to == "CHECKED_IN" {
		checkInsTotal.Inc()
	}
}

// RecordPayment counts a payment status change
func RecordPayment(provider, status string) {
	paymentsTotal.WithLabelValues(provider, status).Inc()
}

// RecordEmail counts an email delivery attempt
func RecordEmail(template string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	emailsTotal.WithLabelValues(template, result).Inc()
}

// RecordScheduleCache counts a schedule cache hit or miss
func RecordScheduleCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	scheduleCache.WithLabelValues(result).Inc()
}
