package plan

import "context"

type Repository interface {
	CreateRequest(ctx context.Context, userID int, p Plan, paymentMethod, txnID string) (*PlanRequest, error)
	GetRequestByID(ctx context.Context, id int) (*PlanRequest, error)
	ListPending(ctx context.Context) ([]PlanRequest, error)
	HasPendingForUser(ctx context.Context, userID int) (bool, error)
	Approve(ctx context.Context, requestID int) (*PlanRequest, error)
	Reject(ctx context.Context, requestID int, reason string) (*PlanRequest, error)
}
