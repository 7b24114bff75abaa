package plan

import (
	"context"
	"errors"
	"strings"
	"time"

	"washitek/internal/email"
	"washitek/internal/logger"
	"washitek/internal/metrics"
	"washitek/internal/notification"
	"washitek/internal/user"
)

var (
	ErrReasonRequired        = errors.New("reject reason is required")
	ErrPlanAlreadyActive     = errors.New("an active plan already exists")
	ErrRequestAlreadyPending = errors.New("a pending plan request already exists")
)

type Service interface {
	Request(ctx context.Context, userID int, planName, paymentMethod, txnID string) (*PlanRequest, error)
	Approve(ctx context.Context, requestID int) (*PlanRequest, error)
	Reject(ctx context.Context, requestID int, reason string) (*PlanRequest, error)
	ListPending(ctx context.Context) ([]PlanRequest, error)
}

type service struct {
	repo         Repository
	userRepo     user.Repository
	notifier     notification.Notifier
	emailService *email.Service
}

func NewService(repo Repository, userRepo user.Repository, notifier notification.Notifier, emailService *email.Service) Service {
	return &service{
		repo:         repo,
		userRepo:     userRepo,
		notifier:     notifier,
		emailService: emailService,
	}
}

func (s *service) Request(ctx context.Context, userID int, planName, paymentMethod, txnID string) (*PlanRequest, error) {
	p, err := Find(planName)
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, user.ErrUserNotFound
	}

	if u.PlanStatus != nil && *u.PlanStatus == user.PlanActive &&
		u.PlanActivatedAt != nil && u.PlanDuration != nil &&
		!IsExpired(*u.PlanActivatedAt, *u.PlanDuration, time.Now()) {
		return nil, ErrPlanAlreadyActive
	}

	pending, err := s.repo.HasPendingForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrRequestAlreadyPending
	}

	req, err := s.repo.CreateRequest(ctx, userID, p, paymentMethod, txnID)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyAdmins(ctx, notification.TypePlanRequested,
		"New plan request",
		u.Name+" requested the "+p.Name+" plan",
		notification.PriorityNormal,
		map[string]interface{}{"request_id": req.ID, "user_id": userID},
	); err != nil {
		logger.Errorf("Failed to notify admins about plan request %d: %v", req.ID, err)
	}

	return req, nil
}

func (s *service) Approve(ctx context.Context, requestID int) (*PlanRequest, error) {
	req, err := s.repo.Approve(ctx, requestID)
	if err != nil {
		return nil, err
	}

	metrics.RecordPlanRequest("approved")
	logger.Infof("Plan request %d approved: %s for user %d", req.ID, req.Plan, req.UserID)

	if err := s.notifier.NotifyUser(ctx, req.UserID, notification.TypePlanApproved,
		"Plan activated",
		"Your "+req.Plan+" plan is now active",
		notification.PriorityHigh,
		map[string]interface{}{"request_id": req.ID, "plan": req.Plan},
	); err != nil {
		logger.Errorf("Failed to notify user %d about plan approval: %v", req.UserID, err)
	}

	if u, err := s.userRepo.FindByID(ctx, req.UserID); err == nil {
		s.emailService.SendPlanApproved(ctx, u.Email, u.Name, req.Plan)
	}

	return req, nil
}

func (s *service) Reject(ctx context.Context, requestID int, reason string) (*PlanRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}

	req, err := s.repo.Reject(ctx, requestID, reason)
	if err != nil {
		return nil, err
	}

	metrics.RecordPlanRequest("rejected")

	if err := s.notifier.NotifyUser(ctx, req.UserID, notification.TypePlanRejected,
		"Plan request rejected",
		"Your "+req.Plan+" plan request was rejected: "+reason,
		notification.PriorityNormal,
		map[string]interface{}{"request_id": req.ID, "plan": req.Plan},
	); err != nil {
		logger.Errorf("Failed to notify user %d about plan rejection: %v", req.UserID, err)
	}

	if u, err := s.userRepo.FindByID(ctx, req.UserID); err == nil {
		s.emailService.SendPlanRejected(ctx, u.Email, u.Name, req.Plan, reason)
	}

	return req, nil
}

func (s *service) ListPending(ctx context.Context) ([]PlanRequest, error) {
	return s.repo.ListPending(ctx)
}
