package catalog

import "time"

// Service is one bookable laundry service (wash & fold, dry cleaning, ...).
type Service struct {
	ID             int       `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Description    string    `db:"description" json:"description"`
	BasePricePaise int64     `db:"base_price_paise" json:"base_price_paise"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type CreateServiceRequest struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description" binding:"required"`
	BasePricePaise int64  `json:"base_price_paise" binding:"required,min=0"`
}
