package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"washitek/internal/booking"
	"washitek/internal/credit"
	"washitek/internal/notification"
	"washitek/internal/user"
)

func TestBookingCreditLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	ctx := context.Background()
	ledger := credit.NewLedger(db, 50000)
	repo := booking.NewRepository(db, ledger)
	userRepo := user.NewRepository(db)
	notifier := notification.NewRepository(db)
	svc := booking.NewService(repo, userRepo, ledger, notifier, testEmailService(), 4000)

	userID := createTestUser(t, db, "flow@test.com", "Flow User", "customer")
	activatePlan(t, db, userID)

	// 1. Customer books a pickup
	b, err := svc.Create(ctx, userID, booking.CreateBookingRequest{
		Service: "Wash & Fold", Address: "12 MG Road", PickupDate: time.Now().AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	require.Equal(t, booking.StatusPending, b.Status)
	require.False(t, b.NoPlan)

	// 2. Admin accepts
	b, err = svc.Accept(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, booking.StatusAccepted, b.Status)
	require.NotNil(t, b.AcceptedAt)

	// 3. Laundry weighed: 2.5 kg at 4000 paise/kg
	b, err = svc.FinalizeUsage(ctx, b.ID, 2.5)
	require.NoError(t, err)
	require.Equal(t, booking.StatusCompleted, b.Status)
	require.NotNil(t, b.AmountDuePaise)
	require.Equal(t, int64(10000), *b.AmountDuePaise)

	u, err := userRepo.FindByID(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 2.5, u.UsageKg)

	// 4. Customer settles on credit
	b, err = svc.PayWithCredit(ctx, userID, b.ID)
	require.NoError(t, err)
	require.Equal(t, booking.StatusCreditPendingRefill, b.Status)

	// 5. Outstanding credit blocks new bookings
	_, err = svc.Create(ctx, userID, booking.CreateBookingRequest{
		Service: "Steam Iron", Address: "12 MG Road", PickupDate: time.Now().AddDate(0, 0, 2),
	})
	require.ErrorIs(t, err, booking.ErrCreditOutstanding)

	// 6. Admin confirms repayment: paid, credit restored
	b, err = svc.ConfirmCreditRepayment(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, booking.StatusPaid, b.Status)
	require.True(t, b.PaymentConfirmed)

	used, err := ledger.OutstandingCredit(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(0), used)

	// 7. Booking gate reopens
	_, err = svc.Create(ctx, userID, booking.CreateBookingRequest{
		Service: "Steam Iron", Address: "12 MG Road", PickupDate: time.Now().AddDate(0, 0, 2),
	})
	require.NoError(t, err)

	// Payment history carries the settled credit record
	payments, err := svc.Payments(ctx, userID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Equal(t, booking.MethodCredit, payments[0].Method)
	require.Equal(t, booking.PaymentSuccess, payments[0].Status)
	require.Equal(t, int64(10000), payments[0].AmountPaise)
}

func TestBookingCashFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	ctx := context.Background()
	ledger := credit.NewLedger(db, 50000)
	repo := booking.NewRepository(db, ledger)
	userRepo := user.NewRepository(db)
	notifier := notification.NewRepository(db)
	svc := booking.NewService(repo, userRepo, ledger, notifier, testEmailService(), 4000)

	userID := createTestUser(t, db, "cash@test.com", "Cash User", "customer")
	activatePlan(t, db, userID)

	b, err := svc.Create(ctx, userID, booking.CreateBookingRequest{
		Service: "Wash & Fold", Address: "4 Park St", PickupDate: time.Now().AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	_, err = svc.Accept(ctx, b.ID)
	require.NoError(t, err)
	_, err = svc.FinalizeUsage(ctx, b.ID, 1.5)
	require.NoError(t, err)

	b, err = svc.InitiateCash(ctx, userID, b.ID)
	require.NoError(t, err)
	require.Equal(t, booking.StatusCashPending, b.Status)

	b, err = svc.ConfirmCash(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, booking.StatusPaid, b.Status)
	require.True(t, b.PaymentConfirmed)

	payments, err := svc.Payments(ctx, userID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Equal(t, booking.MethodCash, payments[0].Method)
	require.Equal(t, booking.PaymentSuccess, payments[0].Status)
}

func TestBookingPayAsYouGoDirect_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	ctx := context.Background()
	ledger := credit.NewLedger(db, 50000)
	repo := booking.NewRepository(db, ledger)
	userRepo := user.NewRepository(db)
	notifier := notification.NewRepository(db)
	svc := booking.NewService(repo, userRepo, ledger, notifier, testEmailService(), 4000)

	// No plan: booking runs the direct settlement path
	userID := createTestUser(t, db, "payg@test.com", "PAYG User", "customer")

	b, err := svc.Create(ctx, userID, booking.CreateBookingRequest{
		Service: "Dry Clean", Address: "9 Hill Rd", PickupDate: time.Now().AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	require.True(t, b.NoPlan)

	_, err = svc.Accept(ctx, b.ID)
	require.NoError(t, err)

	b, err = svc.FinalizeDirect(ctx, b.ID, 25000)
	require.NoError(t, err)
	require.Equal(t, booking.StatusPaid, b.Status)
	require.True(t, b.PaymentConfirmed)
	require.NotNil(t, b.AmountDuePaise)
	require.Equal(t, int64(25000), *b.AmountDuePaise)
}

func TestBookingRejection_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	ctx := context.Background()
	ledger := credit.NewLedger(db, 50000)
	repo := booking.NewRepository(db, ledger)
	userRepo := user.NewRepository(db)
	notifier := notification.NewRepository(db)
	svc := booking.NewService(repo, userRepo, ledger, notifier, testEmailService(), 4000)

	userID := createTestUser(t, db, "reject@test.com", "Reject User", "customer")
	activatePlan(t, db, userID)

	b, err := svc.Create(ctx, userID, booking.CreateBookingRequest{
		Service: "Wash & Fold", Address: "2 Lake View", PickupDate: time.Now().AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	b, err = svc.Reject(ctx, b.ID, "Outside service area")
	require.NoError(t, err)
	require.Equal(t, booking.StatusRejected, b.Status)
	require.NotNil(t, b.RejectReason)
	require.Equal(t, "Outside service area", *b.RejectReason)

	// Rejected is terminal
	_, err = svc.Accept(ctx, b.ID)
	require.ErrorIs(t, err, booking.ErrInvalidTransition)
}

func TestOnlineSettlement_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	ctx := context.Background()
	ledger := credit.NewLedger(db, 50000)
	repo := booking.NewRepository(db, ledger)

	userID := createTestUser(t, db, "online@test.com", "Online User", "customer")
	activatePlan(t, db, userID)

	b := insertCompletedBooking(t, ctx, repo, userID, 15000)

	require.NoError(t, repo.BeginOnline(ctx, b.ID, "order_int_1"))

	b, err := repo.GetBookingByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, booking.StatusAwaitingPayment, b.Status)
	require.NotNil(t, b.OrderID)

	paid, err := repo.CompleteOnline(ctx, "order_int_1", "pay_int_1")
	require.NoError(t, err)
	require.Equal(t, booking.StatusPaid, paid.Status)
	require.True(t, paid.PaymentConfirmed)
}
