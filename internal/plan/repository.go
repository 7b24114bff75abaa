package plan

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrRequestNotFound = errors.New("plan request not found")
	ErrAlreadyResolved = errors.New("plan request already resolved")
)

const requestColumns = `id, user_id, plan, price_paise, duration, type, conditioner, kg_limit,
	payment_method, txn_id, status, reject_reason, approved_at, rejected_at, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateRequest(ctx context.Context, userID int, p Plan, paymentMethod, txnID string) (*PlanRequest, error) {
	query := `
		INSERT INTO plan_requests (user_id, plan, price_paise, duration, type, conditioner, kg_limit, payment_method, txn_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending')
		RETURNING ` + requestColumns

	var req PlanRequest
	err := r.db.GetContext(ctx, &req, query,
		userID, p.Name, p.PricePaise, p.Duration, p.Type, p.Conditioner, p.KgLimit, paymentMethod, txnID)
	if err != nil {
		return nil, err
	}

	return &req, nil
}

func (r *repository) GetRequestByID(ctx context.Context, id int) (*PlanRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM plan_requests WHERE id = $1`

	var req PlanRequest
	err := r.db.GetContext(ctx, &req, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	return &req, nil
}

func (r *repository) ListPending(ctx context.Context) ([]PlanRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM plan_requests
		WHERE status = 'pending'
		ORDER BY created_at ASC
	`

	var requests []PlanRequest
	err := r.db.SelectContext(ctx, &requests, query)
	if err != nil {
		return nil, err
	}

	return requests, nil
}

func (r *repository) HasPendingForUser(ctx context.Context, userID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM plan_requests
			WHERE user_id = $1 AND status = 'pending'
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, userID)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// Approve stamps the request and copies the plan entitlement onto the
// user inside a single transaction, so the two writes commit together.
func (r *repository) Approve(ctx context.Context, requestID int) (*PlanRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var req PlanRequest
	err = tx.GetContext(ctx, &req, `
		UPDATE plan_requests
		SET status = 'approved', approved_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+requestColumns, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.resolveGuardError(ctx, requestID)
		}
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE users
		SET plan_name = $1,
		    plan_price_paise = $2,
		    plan_duration = $3,
		    plan_type = $4,
		    conditioner = $5,
		    kg_limit = $6,
		    plan_status = 'Active',
		    plan_activated_at = NOW(),
		    usage_kg = 0
		WHERE id = $7
	`, req.Plan, req.PricePaise, req.Duration, req.Type, req.Conditioner, req.KgLimit, req.UserID)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, errors.New("plan request owner not found")
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &req, nil
}

func (r *repository) Reject(ctx context.Context, requestID int, reason string) (*PlanRequest, error) {
	var req PlanRequest
	err := r.db.GetContext(ctx, &req, `
		UPDATE plan_requests
		SET status = 'rejected', reject_reason = $2, rejected_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+requestColumns, requestID, reason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.resolveGuardError(ctx, requestID)
		}
		return nil, err
	}

	return &req, nil
}

// resolveGuardError distinguishes a missing request from one that was
// already approved or rejected.
func (r *repository) resolveGuardError(ctx context.Context, requestID int) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM plan_requests WHERE id = $1)`, requestID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyResolved
	}
	return ErrRequestNotFound
}
