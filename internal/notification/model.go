package notification

import (
	"encoding/json"
	"time"
)

type Type string

const (
	TypeBookingCreated   Type = "booking_created"
	TypeBookingAccepted  Type = "booking_accepted"
	TypeBookingRejected  Type = "booking_rejected"
	TypeBookingFinalized Type = "booking_finalized"
	TypePaymentReceived  Type = "payment_received"
	TypePaymentPending   Type = "payment_pending"
	TypeCreditRestored   Type = "credit_restored"
	TypePlanRequested    Type = "plan_requested"
	TypePlanApproved     Type = "plan_approved"
	TypePlanRejected     Type = "plan_rejected"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

type Notification struct {
	ID        int             `db:"id" json:"id"`
	UserID    int             `db:"user_id" json:"user_id"`
	Type      Type            `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Message   string          `db:"message" json:"message"`
	Priority  Priority        `db:"priority" json:"priority"`
	Read      bool            `db:"read" json:"read"`
	Metadata  json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

type AdminNotification struct {
	ID        int             `db:"id" json:"id"`
	Type      Type            `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Message   string          `db:"message" json:"message"`
	Priority  Priority        `db:"priority" json:"priority"`
	Read      bool            `db:"read" json:"read"`
	Metadata  json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
