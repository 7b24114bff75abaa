package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/bookings", "200", 0.5)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/bookings", "200"))
	assert.Equal(t, float64(1), count)
}

func TestRecordHTTPRequestMultiple(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/auth/login", "200", 0.1)
	RecordHTTPRequest("POST", "/auth/login", "200", 0.2)
	RecordHTTPRequest("POST", "/auth/login", "401", 0.05)

	successCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/auth/login", "200"))
	failCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/auth/login", "401"))

	assert.Equal(t, float64(2), successCount)
	assert.Equal(t, float64(1), failCount)
}

func TestRecordBookingTransition(t *testing.T) {
	BookingTransitionsTotal.Reset()

	RecordBookingTransition("pending", "accepted")
	RecordBookingTransition("pending", "accepted")
	RecordBookingTransition("completed", "paid")

	accepted := testutil.ToFloat64(BookingTransitionsTotal.WithLabelValues("pending", "accepted"))
	paid := testutil.ToFloat64(BookingTransitionsTotal.WithLabelValues("completed", "paid"))

	assert.Equal(t, float64(2), accepted)
	assert.Equal(t, float64(1), paid)
}

func TestRecordCreditRestoration(t *testing.T) {
	before := testutil.ToFloat64(CreditRestoredPaiseTotal)

	RecordCreditRestoration(15000)

	after := testutil.ToFloat64(CreditRestoredPaiseTotal)
	assert.Equal(t, float64(15000), after-before)
}

func TestRecordPlanRequest(t *testing.T) {
	PlanRequestsTotal.Reset()

	RecordPlanRequest("approved")
	RecordPlanRequest("rejected")
	RecordPlanRequest("approved")

	approved := testutil.ToFloat64(PlanRequestsTotal.WithLabelValues("approved"))
	rejected := testutil.ToFloat64(PlanRequestsTotal.WithLabelValues("rejected"))

	assert.Equal(t, float64(2), approved)
	assert.Equal(t, float64(1), rejected)
}

func TestRecordPaymentVerification(t *testing.T) {
	PaymentVerificationsTotal.Reset()

	RecordPaymentVerification("ok")
	RecordPaymentVerification("mismatch")

	ok := testutil.ToFloat64(PaymentVerificationsTotal.WithLabelValues("ok"))
	mismatch := testutil.ToFloat64(PaymentVerificationsTotal.WithLabelValues("mismatch"))

	assert.Equal(t, float64(1), ok)
	assert.Equal(t, float64(1), mismatch)
}

func TestRecordEmail(t *testing.T) {
	EmailsSentTotal.Reset()

	RecordEmail("booking_accepted", "sent")
	RecordEmail("booking_accepted", "failed")

	sent := testutil.ToFloat64(EmailsSentTotal.WithLabelValues("booking_accepted", "sent"))
	failed := testutil.ToFloat64(EmailsSentTotal.WithLabelValues("booking_accepted", "failed"))

	assert.Equal(t, float64(1), sent)
	assert.Equal(t, float64(1), failed)
}
