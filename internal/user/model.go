package user

import "time"

type PlanStatus string

const (
	PlanActive  PlanStatus = "Active"
	PlanExpired PlanStatus = "Expired"
)

type User struct {
	ID           int    `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         string `db:"role" json:"role"`

	// Revolving credit drawn against the configured limit, in paise.
	CreditUsedPaise int64 `db:"credit_used_paise" json:"credit_used_paise"`

	// Plan entitlement, set only by an approved plan request.
	PlanName        *string     `db:"plan_name" json:"plan_name,omitempty"`
	PlanPricePaise  *int64      `db:"plan_price_paise" json:"plan_price_paise,omitempty"`
	PlanDuration    *string     `db:"plan_duration" json:"plan_duration,omitempty"`
	PlanType        *string     `db:"plan_type" json:"plan_type,omitempty"`
	Conditioner     *string     `db:"conditioner" json:"conditioner,omitempty"`
	KgLimit         *float64    `db:"kg_limit" json:"kg_limit,omitempty"`
	PlanStatus      *PlanStatus `db:"plan_status" json:"plan_status,omitempty"`
	PlanActivatedAt *time.Time  `db:"plan_activated_at" json:"plan_activated_at,omitempty"`
	UsageKg         float64     `db:"usage_kg" json:"usage_kg"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}
