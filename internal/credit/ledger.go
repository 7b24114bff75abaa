package credit

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"washitek/internal/logger"
	"washitek/internal/metrics"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")
	ErrCreditOutstanding   = errors.New("outstanding credit must be cleared first")
)

// Ledger maintains each user's credit_used_paise within [0, limit].
// All mutations lock the user row so concurrent draws and restorations
// of the same user serialize.
type Ledger struct {
	db    *sqlx.DB
	limit int64
}

func NewLedger(db *sqlx.DB, limitPaise int64) *Ledger {
	return &Ledger{db: db, limit: limitPaise}
}

func (l *Ledger) Limit() int64 {
	return l.limit
}

// Restore is the clamp law: credit used never goes below zero.
func Restore(creditUsed, amountDue int64) int64 {
	restored := creditUsed - amountDue
	if restored < 0 {
		return 0
	}
	return restored
}

// Eligible reports whether a booking qualifies for restoration. The
// credit_restored flag makes the guard self-contained: a second call for
// the same booking is always a no-op.
func Eligible(paymentMethod, status string, creditRestored bool) bool {
	return paymentMethod == "credit" && status == "paid" && !creditRestored
}

type bookingRow struct {
	PaymentMethod  string `db:"payment_method"`
	Status         string `db:"status"`
	AmountDuePaise *int64 `db:"amount_due_paise"`
	CreditRestored bool   `db:"credit_restored"`
}

// RestoreAfterPayment restores the owner's credit for a settled
// credit-funded booking, exactly once. Both rows must exist; a
// non-qualifying booking is a logged no-op, not an error. Everything
// happens inside one transaction.
func (l *Ledger) RestoreAfterPayment(ctx context.Context, userID, bookingID int) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	applied, err := l.RestoreTx(ctx, tx, userID, bookingID)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if applied > 0 {
		metrics.RecordCreditRestoration(applied)
	}
	return nil
}

// RestoreTx runs the restoration inside the caller's transaction, so a
// "mark paid" update and the restore can commit together. Returns the
// amount of credit actually restored (zero for a no-op).
func (l *Ledger) RestoreTx(ctx context.Context, tx *sqlx.Tx, userID, bookingID int) (int64, error) {
	creditUsed, err := lockCreditUsed(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	var b bookingRow
	err = tx.GetContext(ctx, &b, `
		SELECT payment_method, status, amount_due_paise, credit_restored
		FROM bookings
		WHERE id = $1
	`, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrBookingNotFound
		}
		return 0, err
	}

	if !Eligible(b.PaymentMethod, b.Status, b.CreditRestored) || b.AmountDuePaise == nil {
		logger.Info("credit restoration skipped, booking not eligible",
			"user_id", userID,
			"booking_id", bookingID,
			"payment_method", b.PaymentMethod,
			"status", b.Status,
			"credit_restored", b.CreditRestored,
		)
		return 0, nil
	}

	newCreditUsed := Restore(creditUsed, *b.AmountDuePaise)

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET credit_used_paise = $1 WHERE id = $2`,
		newCreditUsed, userID,
	); err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET credit_restored = true WHERE id = $1`,
		bookingID,
	); err != nil {
		return 0, err
	}

	applied := creditUsed - newCreditUsed
	logger.Info("credit restored",
		"user_id", userID,
		"booking_id", bookingID,
		"restored_paise", applied,
		"credit_used_paise", newCreditUsed,
	)
	return applied, nil
}

// DrawTx draws amountPaise of credit for the user inside the caller's
// transaction, refusing to exceed the limit.
func (l *Ledger) DrawTx(ctx context.Context, tx *sqlx.Tx, userID int, amountPaise int64) error {
	creditUsed, err := lockCreditUsed(ctx, tx, userID)
	if err != nil {
		return err
	}

	newCreditUsed := creditUsed + amountPaise
	if newCreditUsed > l.limit {
		return ErrCreditLimitExceeded
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET credit_used_paise = $1 WHERE id = $2`,
		newCreditUsed, userID,
	)
	return err
}

// OutstandingCredit returns the user's current draw without locking.
func (l *Ledger) OutstandingCredit(ctx context.Context, userID int) (int64, error) {
	var creditUsed int64
	err := l.db.GetContext(ctx, &creditUsed,
		`SELECT credit_used_paise FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return creditUsed, nil
}

func lockCreditUsed(ctx context.Context, tx *sqlx.Tx, userID int) (int64, error) {
	var creditUsed int64
	err := tx.GetContext(ctx, &creditUsed,
		`SELECT credit_used_paise FROM users WHERE id = $1 FOR UPDATE`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return creditUsed, nil
}
