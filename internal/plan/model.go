package plan

import "time"

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// PlanRequest is a membership purchase or upgrade awaiting admin review.
// Approval copies the plan fields onto the user; rejection is terminal.
type PlanRequest struct {
	ID            int           `db:"id" json:"id"`
	UserID        int           `db:"user_id" json:"user_id"`
	Plan          string        `db:"plan" json:"plan"`
	PricePaise    int64         `db:"price_paise" json:"price_paise"`
	Duration      string        `db:"duration" json:"duration"`
	Type          string        `db:"type" json:"type"`
	Conditioner   string        `db:"conditioner" json:"conditioner"`
	KgLimit       float64       `db:"kg_limit" json:"kg_limit"`
	PaymentMethod string        `db:"payment_method" json:"payment_method"`
	TxnID         string        `db:"txn_id" json:"txn_id"`
	Status        RequestStatus `db:"status" json:"status"`
	RejectReason  *string       `db:"reject_reason" json:"reject_reason,omitempty"`
	ApprovedAt    *time.Time    `db:"approved_at" json:"approved_at,omitempty"`
	RejectedAt    *time.Time    `db:"rejected_at" json:"rejected_at,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

type CreateRequestRequest struct {
	Plan          string `json:"plan" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	TxnID         string `json:"txn_id"`
}

type RejectRequestRequest struct {
	Reason string `json:"reason" binding:"required"`
}
