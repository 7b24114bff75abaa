package catalog

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateService(ctx context.Context, name, description string, basePricePaise int64) (*Service, error)
	GetAllServices(ctx context.Context) ([]Service, error)
	GetServiceByName(ctx context.Context, name string) (*Service, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateService(ctx context.Context, name, description string, basePricePaise int64) (*Service, error) {
	query := `
		INSERT INTO services (name, description, base_price_paise)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, base_price_paise, created_at
	`

	var service Service
	err := r.db.GetContext(ctx, &service, query, name, description, basePricePaise)
	if err != nil {
		return nil, err
	}

	return &service, nil
}

func (r *repository) GetAllServices(ctx context.Context) ([]Service, error) {
	query := `
		SELECT id, name, description, base_price_paise, created_at
		FROM services
		ORDER BY name
	`

	var services []Service
	err := r.db.SelectContext(ctx, &services, query)
	if err != nil {
		return nil, err
	}

	return services, nil
}

func (r *repository) GetServiceByName(ctx context.Context, name string) (*Service, error) {
	query := `
		SELECT id, name, description, base_price_paise, created_at
		FROM services
		WHERE name = $1
	`

	var service Service
	err := r.db.GetContext(ctx, &service, query, name)
	if err != nil {
		return nil, err
	}

	return &service, nil
}
