package booking

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending             Status = "pending"
	StatusAccepted            Status = "accepted"
	StatusRejected            Status = "rejected"
	StatusCompleted           Status = "completed"
	StatusCashPending         Status = "cash_pending"
	StatusAwaitingPayment     Status = "awaiting_payment"
	StatusCreditPendingRefill Status = "credit_used_pending_refill"
	StatusPaid                Status = "paid"
)

// Event is a lifecycle action applied to a booking.
type Event string

const (
	EventAccept                 Event = "accept"
	EventReject                 Event = "reject"
	EventFinalizeUsage          Event = "finalize_usage"
	EventFinalizeDirect         Event = "finalize_direct"
	EventConfirmPayment         Event = "confirm_payment"
	EventInitiateCash           Event = "initiate_cash"
	EventConfirmCash            Event = "confirm_cash"
	EventBeginOnline            Event = "begin_online"
	EventCompleteOnline         Event = "complete_online"
	EventPayWithCredit          Event = "pay_with_credit"
	EventConfirmCreditRepayment Event = "confirm_credit_repayment"
)

var ErrInvalidTransition = errors.New("invalid booking transition")

// transitions is the full lifecycle table. Any (status, event) pair not
// listed here is rejected.
var transitions = map[Status]map[Event]Status{
	StatusPending: {
		EventAccept: StatusAccepted,
		EventReject: StatusRejected,
	},
	StatusAccepted: {
		EventFinalizeUsage:  StatusCompleted,
		EventFinalizeDirect: StatusPaid,
	},
	StatusCompleted: {
		EventConfirmPayment: StatusPaid,
		EventInitiateCash:   StatusCashPending,
		EventBeginOnline:    StatusAwaitingPayment,
		EventPayWithCredit:  StatusCreditPendingRefill,
	},
	StatusCashPending: {
		EventConfirmCash: StatusPaid,
	},
	StatusAwaitingPayment: {
		EventCompleteOnline: StatusPaid,
	},
	StatusCreditPendingRefill: {
		EventConfirmCreditRepayment: StatusPaid,
	},
}

// Next returns the status reached by applying event to current. It returns
// ErrInvalidTransition when the pair is not in the lifecycle table.
func Next(current Status, event Event) (Status, error) {
	next, ok := transitions[current][event]
	if !ok {
		return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, event)
	}
	return next, nil
}

// Terminal reports whether no further events apply to a booking in s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// ParseStatus validates a status string coming from a request.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusRejected, StatusCompleted,
		StatusCashPending, StatusAwaitingPayment, StatusCreditPendingRefill, StatusPaid:
		return Status(s), true
	}
	return "", false
}
