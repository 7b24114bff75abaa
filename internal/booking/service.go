package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"washitek/internal/email"
	"washitek/internal/logger"
	"washitek/internal/notification"
	"washitek/internal/plan"
	"washitek/internal/user"
)

var (
	ErrNotOwner          = errors.New("booking belongs to another user")
	ErrNotPlanBooking    = errors.New("booking is not covered by a plan")
	ErrNotPayAsYouGo     = errors.New("booking is covered by a plan")
	ErrInvalidKg         = errors.New("usage must be greater than zero")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrPastPickupDate    = errors.New("pickup date is in the past")
	ErrReasonRequired    = errors.New("reject reason is required")
	ErrCreditOutstanding = errors.New("outstanding credit must be repaid before booking")
)

// CreditChecker is the read-only view of the credit ledger the service
// needs when gating new bookings.
type CreditChecker interface {
	OutstandingCredit(ctx context.Context, userID int) (int64, error)
}

type Service interface {
	Create(ctx context.Context, userID int, req CreateBookingRequest) (*Booking, error)
	Get(ctx context.Context, userID int, isAdmin bool, id int) (*Booking, error)
	ListMine(ctx context.Context, userID int) ([]Booking, error)
	ListByStatus(ctx context.Context, status Status) ([]Booking, error)

	Accept(ctx context.Context, id int) (*Booking, error)
	Reject(ctx context.Context, id int, reason string) (*Booking, error)
	FinalizeUsage(ctx context.Context, id int, kgUsed float64) (*Booking, error)
	FinalizeDirect(ctx context.Context, id int, amountPaise int64) (*Booking, error)
	ConfirmPayment(ctx context.Context, id int, method PaymentMethod) (*Booking, error)
	InitiateCash(ctx context.Context, userID, id int) (*Booking, error)
	ConfirmCash(ctx context.Context, id int) (*Booking, error)
	PayWithCredit(ctx context.Context, userID, id int) (*Booking, error)
	ConfirmCreditRepayment(ctx context.Context, id int) (*Booking, error)
	BeginOnline(ctx context.Context, userID, id int, orderID string) (*Booking, error)
	CompleteOnline(ctx context.Context, orderID, paymentID string) (*Booking, error)

	Payments(ctx context.Context, userID int) ([]Payment, error)
}

type service struct {
	repo           Repository
	userRepo       user.Repository
	credit         CreditChecker
	notifier       notification.Notifier
	emailService   *email.Service
	ratePerKgPaise int64
}

func NewService(repo Repository, userRepo user.Repository, credit CreditChecker,
	notifier notification.Notifier, emailService *email.Service, ratePerKgPaise int64) Service {
	return &service{
		repo:           repo,
		userRepo:       userRepo,
		credit:         credit,
		notifier:       notifier,
		emailService:   emailService,
		ratePerKgPaise: ratePerKgPaise,
	}
}

// newRef builds a short customer-facing booking reference.
func newRef() string {
	return "WT-" + strings.ToUpper(uuid.NewString()[:8])
}

// hasActivePlan reports whether u holds a plan entitlement that has not
// lapsed.
func hasActivePlan(u *user.User) bool {
	return u.PlanStatus != nil && *u.PlanStatus == user.PlanActive &&
		u.PlanActivatedAt != nil && u.PlanDuration != nil &&
		!plan.IsExpired(*u.PlanActivatedAt, *u.PlanDuration, time.Now())
}

func (s *service) Create(ctx context.Context, userID int, req CreateBookingRequest) (*Booking, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, user.ErrUserNotFound
	}

	outstanding, err := s.credit.OutstandingCredit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if outstanding > 0 {
		return nil, ErrCreditOutstanding
	}

	if req.PickupDate.Before(time.Now().Truncate(24 * time.Hour)) {
		return nil, ErrPastPickupDate
	}

	b := &Booking{
		Ref:        newRef(),
		UserID:     userID,
		UserEmail:  u.Email,
		Service:    req.Service,
		Address:    req.Address,
		PickupDate: req.PickupDate,
		NoPlan:     !hasActivePlan(u),
	}
	created, err := s.repo.CreateBooking(ctx, b)
	if err != nil {
		return nil, err
	}

	logger.Infof("Booking %s created by user %d (noPlan=%t)", created.Ref, userID, created.NoPlan)

	if err := s.notifier.NotifyAdmins(ctx, notification.TypeBookingCreated,
		"New booking",
		u.Name+" booked "+created.Service+" ("+created.Ref+")",
		notification.PriorityNormal,
		map[string]interface{}{"booking_id": created.ID, "user_id": userID},
	); err != nil {
		logger.Errorf("Failed to notify admins about booking %d: %v", created.ID, err)
	}

	return created, nil
}

func (s *service) Get(ctx context.Context, userID int, isAdmin bool, id int) (*Booking, error) {
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.UserID != userID {
		return nil, ErrNotOwner
	}
	return b, nil
}

func (s *service) ListMine(ctx context.Context, userID int) ([]Booking, error) {
	return s.repo.GetUserBookings(ctx, userID)
}

func (s *service) ListByStatus(ctx context.Context, status Status) ([]Booking, error) {
	return s.repo.ListByStatus(ctx, status)
}

func (s *service) Payments(ctx context.Context, userID int) ([]Payment, error) {
	return s.repo.GetUserPayments(ctx, userID)
}

// getOwned loads a booking and enforces that it belongs to userID.
func (s *service) getOwned(ctx context.Context, userID, id int) (*Booking, error) {
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrNotOwner
	}
	return b, nil
}

func (s *service) notifyUser(ctx context.Context, b *Booking, ntype notification.Type, title, message string, priority notification.Priority) {
	if err := s.notifier.NotifyUser(ctx, b.UserID, ntype, title, message, priority,
		map[string]interface{}{"booking_id": b.ID, "booking_ref": b.Ref},
	); err != nil {
		logger.Errorf("Failed to notify user %d about booking %d: %v", b.UserID, b.ID, err)
	}
}

func (s *service) Accept(ctx context.Context, id int) (*Booking, error) {
	if err := s.repo.Accept(ctx, id); err != nil {
		return nil, err
	}
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifyUser(ctx, b, notification.TypeBookingAccepted,
		"Booking accepted",
		"Your booking "+b.Ref+" has been accepted, pickup on "+b.PickupDate.Format("02 Jan 2006"),
		notification.PriorityNormal)

	if u, err := s.userRepo.FindByID(ctx, b.UserID); err == nil {
		s.emailService.SendBookingAccepted(ctx, u.Email, u.Name, b.Ref, b.Service)
	}
	return b, nil
}

func (s *service) Reject(ctx context.Context, id int, reason string) (*Booking, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	if err := s.repo.Reject(ctx, id, reason); err != nil {
		return nil, err
	}
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifyUser(ctx, b, notification.TypeBookingRejected,
		"Booking rejected",
		"Your booking "+b.Ref+" was rejected: "+reason,
		notification.PriorityHigh)

	if u, err := s.userRepo.FindByID(ctx, b.UserID); err == nil {
		s.emailService.SendBookingRejected(ctx, u.Email, u.Name, b.Ref, reason)
	}
	return b, nil
}

func (s *service) FinalizeUsage(ctx context.Context, id int, kgUsed float64) (*Booking, error) {
	if kgUsed <= 0 {
		return nil, ErrInvalidKg
	}
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.NoPlan {
		return nil, ErrNotPlanBooking
	}

	amount := int64(math.Round(kgUsed * float64(s.ratePerKgPaise)))
	if err := s.repo.FinalizeUsage(ctx, id, kgUsed, amount); err != nil {
		return nil, err
	}
	b, err = s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifyUser(ctx, b, notification.TypeBookingFinalized,
		"Order ready",
		fmt.Sprintf("Booking %s completed, %.1f kg washed, payment due", b.Ref, kgUsed),
		notification.PriorityHigh)

	if u, err := s.userRepo.FindByID(ctx, b.UserID); err == nil {
		s.emailService.SendBookingFinalized(ctx, u.Email, u.Name, b.Ref, amount)
	}
	return b, nil
}

func (s *service) FinalizeDirect(ctx context.Context, id int, amountPaise int64) (*Booking, error) {
	if amountPaise <= 0 {
		return nil, ErrInvalidAmount
	}
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.NoPlan {
		return nil, ErrNotPayAsYouGo
	}

	if err := s.repo.FinalizeDirect(ctx, id, amountPaise); err != nil {
		return nil, err
	}
	b, err = s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifyUser(ctx, b, notification.TypePaymentReceived,
		"Payment recorded",
		"Booking "+b.Ref+" settled and closed",
		notification.PriorityNormal)

	if u, err := s.userRepo.FindByID(ctx, b.UserID); err == nil {
		s.emailService.SendPaymentReceived(ctx, u.Email, u.Name, b.Ref, amountPaise)
	}
	return b, nil
}

func (s *service) ConfirmPayment(ctx context.Context, id int, method PaymentMethod) (*Booking, error) {
	if method == "" {
		method = MethodCash
	}
	if err := s.repo.ConfirmPayment(ctx, id, method); err != nil {
		return nil, err
	}
	return s.settled(ctx, id)
}

func (s *service) InitiateCash(ctx context.Context, userID, id int) (*Booking, error) {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.repo.InitiateCash(ctx, id); err != nil {
		return nil, err
	}
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyAdmins(ctx, notification.TypePaymentPending,
		"Cash payment pending",
		"Booking "+b.Ref+" will be settled in cash on delivery",
		notification.PriorityNormal,
		map[string]interface{}{"booking_id": b.ID},
	); err != nil {
		logger.Errorf("Failed to notify admins about cash payment for booking %d: %v", b.ID, err)
	}
	return b, nil
}

func (s *service) ConfirmCash(ctx context.Context, id int) (*Booking, error) {
	if err := s.repo.ConfirmCash(ctx, id); err != nil {
		return nil, err
	}
	return s.settled(ctx, id)
}

func (s *service) PayWithCredit(ctx context.Context, userID, id int) (*Booking, error) {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.repo.PayWithCredit(ctx, id); err != nil {
		return nil, err
	}
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyAdmins(ctx, notification.TypePaymentPending,
		"Credit used",
		"Booking "+b.Ref+" settled on credit, refill pending",
		notification.PriorityHigh,
		map[string]interface{}{"booking_id": b.ID, "user_id": b.UserID},
	); err != nil {
		logger.Errorf("Failed to notify admins about credit payment for booking %d: %v", b.ID, err)
	}
	return b, nil
}

func (s *service) ConfirmCreditRepayment(ctx context.Context, id int) (*Booking, error) {
	if err := s.repo.ConfirmCreditRepayment(ctx, id); err != nil {
		return nil, err
	}
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifyUser(ctx, b, notification.TypeCreditRestored,
		"Credit restored",
		"Repayment for booking "+b.Ref+" received, your credit is available again",
		notification.PriorityNormal)

	if u, err := s.userRepo.FindByID(ctx, b.UserID); err == nil && b.AmountDuePaise != nil {
		s.emailService.SendPaymentReceived(ctx, u.Email, u.Name, b.Ref, *b.AmountDuePaise)
	}
	return b, nil
}

func (s *service) BeginOnline(ctx context.Context, userID, id int, orderID string) (*Booking, error) {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.repo.BeginOnline(ctx, id, orderID); err != nil {
		return nil, err
	}
	return s.repo.GetBookingByID(ctx, id)
}

func (s *service) CompleteOnline(ctx context.Context, orderID, paymentID string) (*Booking, error) {
	b, err := s.repo.CompleteOnline(ctx, orderID, paymentID)
	if err != nil {
		return nil, err
	}
	s.notifyUser(ctx, b, notification.TypePaymentReceived,
		"Payment received",
		"Online payment for booking "+b.Ref+" confirmed",
		notification.PriorityNormal)

	if u, err := s.userRepo.FindByID(ctx, b.UserID); err == nil && b.AmountDuePaise != nil {
		s.emailService.SendPaymentReceived(ctx, u.Email, u.Name, b.Ref, *b.AmountDuePaise)
	}
	return b, nil
}

// settled reloads a booking after a settlement transition and sends the
// shared payment-received notifications.
func (s *service) settled(ctx context.Context, id int) (*Booking, error) {
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifyUser(ctx, b, notification.TypePaymentReceived,
		"Payment received",
		"Booking "+b.Ref+" is settled",
		notification.PriorityNormal)

	if u, err := s.userRepo.FindByID(ctx, b.UserID); err == nil && b.AmountDuePaise != nil {
		s.emailService.SendPaymentReceived(ctx, u.Email, u.Name, b.Ref, *b.AmountDuePaise)
	}
	return b, nil
}
