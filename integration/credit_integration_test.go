package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"washitek/internal/booking"
	"washitek/internal/credit"
)

func insertCompletedBooking(t *testing.T, ctx context.Context, repo booking.Repository, userID int, amountPaise int64) *booking.Booking {
	t.Helper()

	b, err := repo.CreateBooking(ctx, &booking.Booking{
		Ref: "WT-CRED" + time.Now().Format("050405"), UserID: userID, UserEmail: "credit@test.com",
		Service: "Wash & Fold", Address: "12 MG Road", PickupDate: time.Now().AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	require.NoError(t, repo.Accept(ctx, b.ID))
	require.NoError(t, repo.FinalizeUsage(ctx, b.ID, 3.75, amountPaise))

	b, err = repo.GetBookingByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, booking.StatusCompleted, b.Status)
	return b
}

func TestCreditDrawAndRestore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	ctx := context.Background()
	ledger := credit.NewLedger(db, 50000)
	repo := booking.NewRepository(db, ledger)

	userID := createTestUser(t, db, "credit@test.com", "Credit User", "customer")
	activatePlan(t, db, userID)

	b := insertCompletedBooking(t, ctx, repo, userID, 15000)

	// Settle on credit: the draw and the status change commit together
	require.NoError(t, repo.PayWithCredit(ctx, b.ID))

	used, err := ledger.OutstandingCredit(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(15000), used)

	b, err = repo.GetBookingByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, booking.StatusCreditPendingRefill, b.Status)
	require.Equal(t, booking.MethodCredit, b.PaymentMethod)

	// Repayment marks the booking paid and restores the credit atomically
	require.NoError(t, repo.ConfirmCreditRepayment(ctx, b.ID))

	used, err = ledger.OutstandingCredit(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(0), used)

	b, err = repo.GetBookingByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, booking.StatusPaid, b.Status)
	require.True(t, b.PaymentConfirmed)
	require.True(t, b.CreditRestored)
}

func TestCreditRestoreIdempotent_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	ctx := context.Background()
	ledger := credit.NewLedger(db, 50000)
	repo := booking.NewRepository(db, ledger)

	userID := createTestUser(t, db, "idem@test.com", "Idem User", "customer")
	activatePlan(t, db, userID)

	b := insertCompletedBooking(t, ctx, repo, userID, 12000)
	require.NoError(t, repo.PayWithCredit(ctx, b.ID))
	require.NoError(t, repo.ConfirmCreditRepayment(ctx, b.ID))

	// A second standalone restoration attempt is a no-op
	require.NoError(t, ledger.RestoreAfterPayment(ctx, userID, b.ID))

	used, err := ledger.OutstandingCredit(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(0), used)
}

func TestCreditLimit_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	ctx := context.Background()
	ledger := credit.NewLedger(db, 50000)
	repo := booking.NewRepository(db, ledger)

	userID := createTestUser(t, db, "limit@test.com", "Limit User", "customer")
	activatePlan(t, db, userID)

	b := insertCompletedBooking(t, ctx, repo, userID, 60000)
	err := repo.PayWithCredit(ctx, b.ID)
	require.ErrorIs(t, err, credit.ErrCreditLimitExceeded)

	// Refused draw leaves both the ledger and the booking untouched
	used, err := ledger.OutstandingCredit(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(0), used)

	b, err = repo.GetBookingByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, booking.StatusCompleted, b.Status)
}
