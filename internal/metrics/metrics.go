package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "washitek_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "washitek_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "washitek_booking_transitions_total",
			Help: "Total number of booking state transitions",
		},
		[]string{"from", "to"},
	)

	BookingsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "washitek_bookings_created_total",
			Help: "Total number of bookings created",
		},
	)

	CreditRestorationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "washitek_credit_restorations_total",
			Help: "Total number of credit restorations applied",
		},
	)

	CreditRestoredPaiseTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "washitek_credit_restored_paise_total",
			Help: "Total credit restored, in paise",
		},
	)

	PlanRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "washitek_plan_requests_total",
			Help: "Total number of plan requests resolved",
		},
		[]string{"status"},
	)

	PaymentVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "washitek_payment_verifications_total",
			Help: "Total number of gateway signature verifications",
		},
		[]string{"result"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "washitek_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "washitek_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBookingTransition(from, to string) {
	BookingTransitionsTotal.WithLabelValues(from, to).Inc()
}

func RecordBookingCreated() {
	BookingsCreatedTotal.Inc()
}

func RecordCreditRestoration(amountPaise int64) {
	CreditRestorationsTotal.Inc()
	CreditRestoredPaiseTotal.Add(float64(amountPaise))
}

func RecordPlanRequest(status string) {
	PlanRequestsTotal.WithLabelValues(status).Inc()
}

func RecordPaymentVerification(result string) {
	PaymentVerificationsTotal.WithLabelValues(result).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
