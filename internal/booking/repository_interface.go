package booking

import "context"

type Repository interface {
	CreateBooking(ctx context.Context, b *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id int) (*Booking, error)
	GetBookingByOrderID(ctx context.Context, orderID string) (*Booking, error)
	GetUserBookings(ctx context.Context, userID int) ([]Booking, error)
	ListByStatus(ctx context.Context, status Status) ([]Booking, error)

	Accept(ctx context.Context, id int) error
	Reject(ctx context.Context, id int, reason string) error
	FinalizeUsage(ctx context.Context, id int, kgUsed float64, amountPaise int64) error
	FinalizeDirect(ctx context.Context, id int, amountPaise int64) error
	ConfirmPayment(ctx context.Context, id int, method PaymentMethod) error
	InitiateCash(ctx context.Context, id int) error
	ConfirmCash(ctx context.Context, id int) error
	PayWithCredit(ctx context.Context, id int) error
	ConfirmCreditRepayment(ctx context.Context, id int) error
	BeginOnline(ctx context.Context, id int, orderID string) error
	CompleteOnline(ctx context.Context, orderID, paymentID string) (*Booking, error)

	GetUserPayments(ctx context.Context, userID int) ([]Payment, error)
}
