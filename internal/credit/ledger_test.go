package credit

import (
	"context"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"washitek/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func TestRestore_Clamp(t *testing.T) {
	// clamp law: never negative
	assert.Equal(t, int64(0), Restore(10000, 30000))
	assert.Equal(t, int64(0), Restore(0, 100))
	assert.Equal(t, int64(20000), Restore(50000, 30000))
	assert.Equal(t, int64(0), Restore(30000, 30000))
}

func TestEligible(t *testing.T) {
	assert.True(t, Eligible("credit", "paid", false))
	assert.False(t, Eligible("credit", "paid", true))
	assert.False(t, Eligible("cash", "paid", false))
	assert.False(t, Eligible("credit", "completed", false))
	assert.False(t, Eligible("", "pending", false))
}

func setupMock(t *testing.T) (*Ledger, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	ledger := NewLedger(sqlxDB, 50000)

	return ledger, mock, func() { sqlxDB.Close() }
}

func expectLockUser(mock sqlmock.Sqlmock, userID int, creditUsed int64) {
	mock.ExpectQuery("SELECT credit_used_paise FROM users WHERE id = (.+) FOR UPDATE").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"credit_used_paise"}).AddRow(creditUsed))
}

func expectBookingRow(mock sqlmock.Sqlmock, bookingID int, method, status string, amountDue int64, restored bool) {
	mock.ExpectQuery("SELECT payment_method, status, amount_due_paise, credit_restored FROM bookings").
		WithArgs(bookingID).
		WillReturnRows(sqlmock.NewRows([]string{"payment_method", "status", "amount_due_paise", "credit_restored"}).
			AddRow(method, status, amountDue, restored))
}

func TestRestoreAfterPayment_Applies(t *testing.T) {
	ledger, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	expectLockUser(mock, 1, 50000)
	expectBookingRow(mock, 7, "credit", "paid", 15000, false)
	mock.ExpectExec("UPDATE users SET credit_used_paise").
		WithArgs(int64(35000), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings SET credit_restored = true").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := ledger.RestoreAfterPayment(context.Background(), 1, 7)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreAfterPayment_ClampsAtZero(t *testing.T) {
	ledger, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	expectLockUser(mock, 1, 10000)
	expectBookingRow(mock, 7, "credit", "paid", 30000, false)
	mock.ExpectExec("UPDATE users SET credit_used_paise").
		WithArgs(int64(0), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings SET credit_restored = true").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := ledger.RestoreAfterPayment(context.Background(), 1, 7)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreAfterPayment_NoOpWhenNotEligible(t *testing.T) {
	ledger, mock, close := setupMock(t)
	defer close()

	// cash booking: skipped without touching the users table
	mock.ExpectBegin()
	expectLockUser(mock, 1, 20000)
	expectBookingRow(mock, 7, "cash", "paid", 15000, false)
	mock.ExpectCommit()

	err := ledger.RestoreAfterPayment(context.Background(), 1, 7)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreAfterPayment_IdempotentViaRestoredFlag(t *testing.T) {
	ledger, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	expectLockUser(mock, 1, 20000)
	expectBookingRow(mock, 7, "credit", "paid", 15000, true)
	mock.ExpectCommit()

	err := ledger.RestoreAfterPayment(context.Background(), 1, 7)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreAfterPayment_UserMissing(t *testing.T) {
	ledger, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT credit_used_paise FROM users WHERE id = (.+) FOR UPDATE").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"credit_used_paise"}))
	mock.ExpectRollback()

	err := ledger.RestoreAfterPayment(context.Background(), 99, 7)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRestoreAfterPayment_BookingMissing(t *testing.T) {
	ledger, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	expectLockUser(mock, 1, 20000)
	mock.ExpectQuery("SELECT payment_method, status, amount_due_paise, credit_restored FROM bookings").
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"payment_method", "status", "amount_due_paise", "credit_restored"}))
	mock.ExpectRollback()

	err := ledger.RestoreAfterPayment(context.Background(), 1, 404)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestDrawTx_RefusesOverLimit(t *testing.T) {
	ledger, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	expectLockUser(mock, 1, 45000)
	mock.ExpectRollback()

	tx, err := ledger.db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	err = ledger.DrawTx(context.Background(), tx, 1, 10000)
	assert.ErrorIs(t, err, ErrCreditLimitExceeded)
}

func TestDrawTx_WithinLimit(t *testing.T) {
	ledger, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	expectLockUser(mock, 1, 30000)
	mock.ExpectExec("UPDATE users SET credit_used_paise").
		WithArgs(int64(45000), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := ledger.db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	err = ledger.DrawTx(context.Background(), tx, 1, 15000)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}
