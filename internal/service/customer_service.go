package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
)

type customerRepository interface {
	List(ctx context.Context) ([]models.Customer, error)
	Create(ctx context.Context, c *models.Customer) error
}

// CustomerService manages customer contacts.
type CustomerService struct {
	repo      customerRepository
	validator *validator.Validate
}

// NewCustomerService constructs CustomerService.
func NewCustomerService(repo customerRepository, validate *validator.Validate) *CustomerService {
	if validate == nil {
		validate = validator.New()
	}
	return &CustomerService{repo: repo, validator: validate}
}

// List returns every customer.
func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list customers")
	}
	if items == nil {
		items = []models.Customer{}
	}
	return items, nil
}

// Create stores a customer, defaulting the owner when none is given.
func (s *CustomerService) Create(ctx context.Context, req models.CustomerRequest) (*models.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Name and email are required")
	}
	owner := models.DefaultCustomerOwner
	if req.AddedByUserID != nil && *req.AddedByUserID > 0 {
		owner = *req.AddedByUserID
	}
	customer := &models.Customer{Name: req.Name, Email: req.Email, AddedByUserID: owner}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, appErrors.Internal(err, "failed to create customer")
	}
	return customer, nil
}
