package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var userCols = []string{
	"id", "name", "email", "password_hash", "role", "credit_used_paise",
	"plan_name", "plan_price_paise", "plan_duration", "plan_type", "conditioner", "kg_limit",
	"plan_status", "plan_activated_at", "usage_kg", "created_at",
}

func userRow(id int, email string, creditUsed int64) *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow(id, "Test User", email, "hash", "customer", creditUsed,
			nil, nil, nil, nil, nil, nil, nil, nil, 0.0, time.Now())
}

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func TestCreateAndFindUser(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Test User", "u@washitek.com", "hash", "customer").
		WillReturnRows(userRow(1, "u@washitek.com", 0))

	u, err := repo.Create(ctx, "Test User", "u@washitek.com", "hash", "customer")
	require.NoError(t, err)
	require.Equal(t, 1, u.ID)
	require.Equal(t, int64(0), u.CreditUsedPaise)
	require.Nil(t, u.PlanName)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(1).
		WillReturnRows(userRow(1, "u@washitek.com", 12000))

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(12000), got.CreditUsedPaise)
}

func TestFindByEmail(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("u@washitek.com").
		WillReturnRows(userRow(3, "u@washitek.com", 0))

	got, err := repo.FindByEmail(context.Background(), "u@washitek.com")
	require.NoError(t, err)
	require.Equal(t, 3, got.ID)
}

func TestEmailExists(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("u@washitek.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.EmailExists(context.Background(), "u@washitek.com")
	require.NoError(t, err)
	require.True(t, ok)
}
