package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/admissions-crm-api/internal/models"
)

// CustomerRepository persists customers.
type CustomerRepository struct {
	db *sqlx.DB
}

// NewCustomerRepository constructs the repository.
func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// List returns every customer.
func (r *CustomerRepository) List(ctx context.Context) ([]models.Customer, error) {
	const query = `SELECT id, name, email, added_by_user_id, created_at FROM customers ORDER BY id ASC`
	customers := []models.Customer{}
	if err := r.db.SelectContext(ctx, &customers, query); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// Create inserts a customer.
func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	c.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO customers (name, email, added_by_user_id, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, c.Name, c.Email, c.AddedByUserID, c.CreatedAt).Scan(&c.ID); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}
