package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"washitek/internal/logger"
	"washitek/internal/metrics"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrNoAmountDue     = errors.New("booking has no amount due")
)

// CreditLedger is the slice of the credit ledger the booking repository
// needs inside its settlement transactions.
type CreditLedger interface {
	DrawTx(ctx context.Context, tx *sqlx.Tx, userID int, amountPaise int64) error
	RestoreTx(ctx context.Context, tx *sqlx.Tx, userID, bookingID int) (int64, error)
}

const bookingColumns = `id, booking_ref, user_id, user_email, service, address, pickup_date,
	status, payment_method, amount_due_paise, usage_kg, no_plan, payment_confirmed,
	credit_restored, reject_reason, order_id, accepted_at, rejected_at, finalized_at,
	paid_at, created_at`

type repository struct {
	db     *sqlx.DB
	ledger CreditLedger
}

func NewRepository(db *sqlx.DB, ledger CreditLedger) Repository {
	return &repository{db: db, ledger: ledger}
}

func (r *repository) CreateBooking(ctx context.Context, b *Booking) (*Booking, error) {
	query := `
		INSERT INTO bookings (booking_ref, user_id, user_email, service, address, pickup_date, status, no_plan)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + bookingColumns
	var created Booking
	err := r.db.GetContext(ctx, &created, query,
		b.Ref, b.UserID, b.UserEmail, b.Service, b.Address, b.PickupDate, StatusPending, b.NoPlan)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	metrics.RecordBookingCreated()
	return &created, nil
}

func (r *repository) GetBookingByID(ctx context.Context, id int) (*Booking, error) {
	var b Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &b, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

func (r *repository) GetBookingByOrderID(ctx context.Context, orderID string) (*Booking, error) {
	var b Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE order_id = $1`
	if err := r.db.GetContext(ctx, &b, query, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking by order: %w", err)
	}
	return &b, nil
}

func (r *repository) GetUserBookings(ctx context.Context, userID int) ([]Booking, error) {
	var bookings []Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	return bookings, nil
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]Booking, error) {
	var bookings []Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &bookings, query, status); err != nil {
		return nil, fmt.Errorf("list bookings by status: %w", err)
	}
	return bookings, nil
}

func (r *repository) GetUserPayments(ctx context.Context, userID int) ([]Payment, error) {
	var payments []Payment
	query := `
		SELECT id, user_id, booking_id, amount_paise, method, status, gateway_ref, created_at
		FROM payments WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &payments, query, userID); err != nil {
		return nil, fmt.Errorf("list user payments: %w", err)
	}
	return payments, nil
}

// lockBooking loads a booking row under FOR UPDATE so a settlement
// transaction observes a stable status.
func lockBooking(ctx context.Context, tx *sqlx.Tx, id int) (*Booking, error) {
	var b Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &b, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("lock booking: %w", err)
	}
	return &b, nil
}

func insertPayment(ctx context.Context, tx *sqlx.Tx, b *Booking, amount int64, method PaymentMethod, status PaymentStatus, gatewayRef *string) error {
	query := `
		INSERT INTO payments (user_id, booking_id, amount_paise, method, status, gateway_ref)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, query, b.UserID, b.ID, amount, method, status, gatewayRef); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// transition runs fn inside a transaction after locking the booking and
// checking that event is legal from its current status.
func (r *repository) transition(ctx context.Context, id int, event Event, fn func(tx *sqlx.Tx, b *Booking, next Status) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	b, err := lockBooking(ctx, tx, id)
	if err != nil {
		return err
	}
	next, err := Next(b.Status, event)
	if err != nil {
		return err
	}
	if err := fn(tx, b, next); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	metrics.RecordBookingTransition(string(b.Status), string(next))
	return nil
}

func (r *repository) Accept(ctx context.Context, id int) error {
	return r.transition(ctx, id, EventAccept, func(tx *sqlx.Tx, b *Booking, next Status) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = $1, accepted_at = NOW() WHERE id = $2`, next, b.ID)
		if err != nil {
			return fmt.Errorf("accept booking: %w", err)
		}
		return nil
	})
}

func (r *repository) Reject(ctx context.Context, id int, reason string) error {
	return r.transition(ctx, id, EventReject, func(tx *sqlx.Tx, b *Booking, next Status) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = $1, reject_reason = $2, rejected_at = NOW() WHERE id = $3`,
			next, reason, b.ID)
		if err != nil {
			return fmt.Errorf("reject booking: %w", err)
		}
		return nil
	})
}

func (r *repository) FinalizeUsage(ctx context.Context, id int, kgUsed float64, amountPaise int64) error {
	return r.transition(ctx, id, EventFinalizeUsage, func(tx *sqlx.Tx, b *Booking, next Status) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE bookings
			SET status = $1, usage_kg = $2, amount_due_paise = $3, payment_confirmed = false, finalized_at = NOW()
			WHERE id = $4`,
			next, kgUsed, amountPaise, b.ID)
		if err != nil {
			return fmt.Errorf("finalize usage: %w", err)
		}
		if !b.NoPlan {
			_, err = tx.ExecContext(ctx,
				`UPDATE users SET usage_kg = usage_kg + $1 WHERE id = $2`, kgUsed, b.UserID)
			if err != nil {
				return fmt.Errorf("add plan usage: %w", err)
			}
		}
		return nil
	})
}

func (r *repository) FinalizeDirect(ctx context.Context, id int, amountPaise int64) error {
	return r.transition(ctx, id, EventFinalizeDirect, func(tx *sqlx.Tx, b *Booking, next Status) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE bookings
			SET status = $1, amount_due_paise = $2, payment_method = $3, payment_confirmed = true,
			    finalized_at = NOW(), paid_at = NOW()
			WHERE id = $4`,
			next, amountPaise, MethodCash, b.ID)
		if err != nil {
			return fmt.Errorf("finalize direct: %w", err)
		}
		return insertPayment(ctx, tx, b, amountPaise, MethodCash, PaymentSuccess, nil)
	})
}

func (r *repository) ConfirmPayment(ctx context.Context, id int, method PaymentMethod) error {
	return r.transition(ctx, id, EventConfirmPayment, func(tx *sqlx.Tx, b *Booking, next Status) error {
		if b.AmountDuePaise == nil {
			return ErrNoAmountDue
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE bookings
			SET status = $1, payment_method = $2, payment_confirmed = true, paid_at = NOW()
			WHERE id = $3`,
			next, method, b.ID)
		if err != nil {
			return fmt.Errorf("confirm payment: %w", err)
		}
		return insertPayment(ctx, tx, b, *b.AmountDuePaise, method, PaymentSuccess, nil)
	})
}

func (r *repository) InitiateCash(ctx context.Context, id int) error {
	return r.transition(ctx, id, EventInitiateCash, func(tx *sqlx.Tx, b *Booking, next Status) error {
		if b.AmountDuePaise == nil {
			return ErrNoAmountDue
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = $1, payment_method = $2 WHERE id = $3`,
			next, MethodCash, b.ID)
		if err != nil {
			return fmt.Errorf("initiate cash payment: %w", err)
		}
		return insertPayment(ctx, tx, b, *b.AmountDuePaise, MethodCash, PaymentPending, nil)
	})
}

func (r *repository) ConfirmCash(ctx context.Context, id int) error {
	return r.transition(ctx, id, EventConfirmCash, func(tx *sqlx.Tx, b *Booking, next Status) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = $1, payment_confirmed = true, paid_at = NOW() WHERE id = $2`,
			next, b.ID)
		if err != nil {
			return fmt.Errorf("confirm cash payment: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE payments SET status = $1
			WHERE booking_id = $2 AND method = $3 AND status = $4`,
			PaymentSuccess, b.ID, MethodCash, PaymentPending)
		if err != nil {
			return fmt.Errorf("settle cash payment record: %w", err)
		}
		return nil
	})
}

func (r *repository) PayWithCredit(ctx context.Context, id int) error {
	return r.transition(ctx, id, EventPayWithCredit, func(tx *sqlx.Tx, b *Booking, next Status) error {
		if b.AmountDuePaise == nil {
			return ErrNoAmountDue
		}
		if err := r.ledger.DrawTx(ctx, tx, b.UserID, *b.AmountDuePaise); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = $1, payment_method = $2 WHERE id = $3`,
			next, MethodCredit, b.ID)
		if err != nil {
			return fmt.Errorf("pay with credit: %w", err)
		}
		return insertPayment(ctx, tx, b, *b.AmountDuePaise, MethodCredit, PaymentPending, nil)
	})
}

func (r *repository) ConfirmCreditRepayment(ctx context.Context, id int) error {
	return r.transition(ctx, id, EventConfirmCreditRepayment, func(tx *sqlx.Tx, b *Booking, next Status) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = $1, payment_confirmed = true, paid_at = NOW() WHERE id = $2`,
			next, b.ID)
		if err != nil {
			return fmt.Errorf("confirm credit repayment: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE payments SET status = $1
			WHERE booking_id = $2 AND method = $3 AND status = $4`,
			PaymentSuccess, b.ID, MethodCredit, PaymentPending)
		if err != nil {
			return fmt.Errorf("settle credit payment record: %w", err)
		}
		restored, err := r.ledger.RestoreTx(ctx, tx, b.UserID, b.ID)
		if err != nil {
			return err
		}
		if restored > 0 {
			metrics.RecordCreditRestoration(restored)
		}
		logger.WithFields(map[string]interface{}{
			"booking_id":     b.ID,
			"user_id":        b.UserID,
			"restored_paise": restored,
		}).Info("credit repayment confirmed")
		return nil
	})
}

func (r *repository) BeginOnline(ctx context.Context, id int, orderID string) error {
	return r.transition(ctx, id, EventBeginOnline, func(tx *sqlx.Tx, b *Booking, next Status) error {
		if b.AmountDuePaise == nil {
			return ErrNoAmountDue
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = $1, payment_method = $2, order_id = $3 WHERE id = $4`,
			next, MethodOnline, orderID, b.ID)
		if err != nil {
			return fmt.Errorf("begin online payment: %w", err)
		}
		return nil
	})
}

func (r *repository) CompleteOnline(ctx context.Context, orderID, paymentID string) (*Booking, error) {
	b, err := r.GetBookingByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	err = r.transition(ctx, b.ID, EventCompleteOnline, func(tx *sqlx.Tx, locked *Booking, next Status) error {
		if locked.AmountDuePaise == nil {
			return ErrNoAmountDue
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = $1, payment_confirmed = true, paid_at = NOW() WHERE id = $2`,
			next, locked.ID)
		if err != nil {
			return fmt.Errorf("complete online payment: %w", err)
		}
		return insertPayment(ctx, tx, locked, *locked.AmountDuePaise, MethodOnline, PaymentSuccess, &paymentID)
	})
	if err != nil {
		return nil, err
	}
	return r.GetBookingByID(ctx, b.ID)
}
