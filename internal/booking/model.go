package booking

import "time"

// PaymentMethod records how a booking is being settled. It is empty until
// the customer picks a settlement path.
type PaymentMethod string

const (
	MethodCash   PaymentMethod = "cash"
	MethodOnline PaymentMethod = "online"
	MethodCredit PaymentMethod = "credit"
)

// PaymentStatus is the settlement state of a payment record.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentSuccess PaymentStatus = "Success"
)

type Booking struct {
	ID               int           `db:"id" json:"id"`
	Ref              string        `db:"booking_ref" json:"bookingRef"`
	UserID           int           `db:"user_id" json:"userId"`
	UserEmail        string        `db:"user_email" json:"userEmail"`
	Service          string        `db:"service" json:"service"`
	Address          string        `db:"address" json:"address"`
	PickupDate       time.Time     `db:"pickup_date" json:"pickupDate"`
	Status           Status        `db:"status" json:"status"`
	PaymentMethod    PaymentMethod `db:"payment_method" json:"paymentMethod,omitempty"`
	AmountDuePaise   *int64        `db:"amount_due_paise" json:"amountDuePaise,omitempty"`
	UsageKg          *float64      `db:"usage_kg" json:"usageKg,omitempty"`
	NoPlan           bool          `db:"no_plan" json:"noPlan"`
	PaymentConfirmed bool          `db:"payment_confirmed" json:"paymentConfirmed"`
	CreditRestored   bool          `db:"credit_restored" json:"-"`
	RejectReason     *string       `db:"reject_reason" json:"rejectReason,omitempty"`
	OrderID          *string       `db:"order_id" json:"-"`
	AcceptedAt       *time.Time    `db:"accepted_at" json:"acceptedAt,omitempty"`
	RejectedAt       *time.Time    `db:"rejected_at" json:"rejectedAt,omitempty"`
	FinalizedAt      *time.Time    `db:"finalized_at" json:"finalizedAt,omitempty"`
	PaidAt           *time.Time    `db:"paid_at" json:"paidAt,omitempty"`
	CreatedAt        time.Time     `db:"created_at" json:"createdAt"`
}

// Payment is one settlement record against a booking.
type Payment struct {
	ID          int           `db:"id" json:"id"`
	UserID      int           `db:"user_id" json:"userId"`
	BookingID   int           `db:"booking_id" json:"bookingId"`
	AmountPaise int64         `db:"amount_paise" json:"amountPaise"`
	Method      PaymentMethod `db:"method" json:"method"`
	Status      PaymentStatus `db:"status" json:"status"`
	GatewayRef  *string       `db:"gateway_ref" json:"gatewayRef,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
}

type CreateBookingRequest struct {
	Service    string    `json:"service" binding:"required"`
	Address    string    `json:"address" binding:"required"`
	PickupDate time.Time `json:"pickupDate" binding:"required"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type FinalizeUsageRequest struct {
	KgUsed float64 `json:"kgUsed" binding:"required"`
}

type FinalizeDirectRequest struct {
	AmountPaise int64 `json:"amountPaise" binding:"required,gt=0"`
}
