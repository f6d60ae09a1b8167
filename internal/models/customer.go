package models

import "time"

// DefaultCustomerOwner is recorded when a customer is created without an owner.
const DefaultCustomerOwner int64 = 1

// Customer is a contact captured by staff outside the admissions funnel.
type Customer struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	AddedByUserID int64     `db:"added_by_user_id" json:"addedByUserId"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// CustomerRequest is the create payload.
type CustomerRequest struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required"`
	AddedByUserID *int64 `json:"addedByUserId"`
}
