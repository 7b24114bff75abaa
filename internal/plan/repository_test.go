package plan

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var requestCols = []string{
	"id", "user_id", "plan", "price_paise", "duration", "type", "conditioner", "kg_limit",
	"payment_method", "txn_id", "status", "reject_reason", "approved_at", "rejected_at", "created_at",
}

func pendingRow(id, userID int, planName string) *sqlmock.Rows {
	return sqlmock.NewRows(requestCols).
		AddRow(id, userID, planName, 49900, "3 Months", "individual", "standard", 20.0,
			"online", "txn-1", "pending", nil, nil, nil, time.Now())
}

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

func TestCreateRequest(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	p, err := Find("Quick Wash")
	require.NoError(t, err)

	mock.ExpectQuery("INSERT INTO plan_requests").
		WithArgs(1, p.Name, p.PricePaise, p.Duration, p.Type, p.Conditioner, p.KgLimit, "online", "txn-1").
		WillReturnRows(pendingRow(10, 1, p.Name))

	req, err := repo.CreateRequest(context.Background(), 1, p, "online", "txn-1")
	require.NoError(t, err)
	require.Equal(t, 10, req.ID)
	require.Equal(t, StatusPending, req.Status)
}

func TestApprove_UpdatesRequestAndUserTogether(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	approvedAt := time.Now()
	approvedRow := sqlmock.NewRows(requestCols).
		AddRow(10, 1, "Quick Wash", 49900, "3 Months", "individual", "standard", 20.0,
			"online", "txn-1", "approved", nil, approvedAt, nil, time.Now())

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE plan_requests SET status = 'approved'").
		WithArgs(10).
		WillReturnRows(approvedRow)
	mock.ExpectExec("UPDATE users").
		WithArgs("Quick Wash", int64(49900), "3 Months", "individual", "standard", 20.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req, err := repo.Approve(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, req.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApprove_AlreadyResolved(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE plan_requests SET status = 'approved'").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(requestCols))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.Approve(context.Background(), 10)
	require.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestReject_StampsReason(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	rejectedRow := sqlmock.NewRows(requestCols).
		AddRow(10, 1, "Quick Wash", 49900, "3 Months", "individual", "standard", 20.0,
			"online", "txn-1", "rejected", "payment not received", nil, time.Now(), time.Now())

	mock.ExpectQuery("UPDATE plan_requests SET status = 'rejected'").
		WithArgs(10, "payment not received").
		WillReturnRows(rejectedRow)

	req, err := repo.Reject(context.Background(), 10, "payment not received")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, req.Status)
	require.NotNil(t, req.RejectReason)
}

func TestReject_NotFound(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("UPDATE plan_requests SET status = 'rejected'").
		WithArgs(404, "reason").
		WillReturnRows(sqlmock.NewRows(requestCols))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := repo.Reject(context.Background(), 404, "reason")
	require.ErrorIs(t, err, ErrRequestNotFound)
}

func TestHasPendingForUser(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasPendingForUser(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, ok)
}
