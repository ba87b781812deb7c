package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/logger"
	"camera-rental-backend/internal/repository"
)

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func normalizeCustomer(c *domain.Customer) error {
	c.FullName = strings.TrimSpace(c.FullName)
	c.IdentityNumber = strings.TrimSpace(c.IdentityNumber)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.FullName == "" {
		return domain.NewInvalidArgumentError("full name is required")
	}
	if c.IdentityNumber == "" {
		return domain.NewInvalidArgumentError("identity number is required")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return domain.NewInvalidArgumentError(fmt.Sprintf("invalid email %q", c.Email))
		}
	}
	switch c.Status {
	case "":
		c.Status = domain.CustomerStatusActive
	case domain.CustomerStatusActive, domain.CustomerStatusInactive:
	default:
		return domain.NewInvalidArgumentError(fmt.Sprintf("unknown customer status %q", c.Status))
	}
	return nil
}

func (s *customerService) ListCustomers(ctx context.Context, status string) ([]domain.Customer, error) {
	return s.customerRepo.List(ctx, status)
}

func (s *customerService) GetCustomer(ctx context.Context, id int32) (*domain.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

func (s *customerService) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	if err := normalizeCustomer(customer); err != nil {
		return err
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return err
	}
	logger.Info("Customer created", "customerID", customer.ID)
	return nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, customer *domain.Customer) error {
	if err := normalizeCustomer(customer); err != nil {
		return err
	}
	existing, err := s.customerRepo.GetByID(ctx, customer.ID)
	if err != nil {
		return err
	}
	customer.CreatedOn = existing.CreatedOn
	return s.customerRepo.Update(ctx, customer)
}

// DeleteCustomer fails with a conflict while rentals still reference the customer.
func (s *customerService) DeleteCustomer(ctx context.Context, id int32) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("Customer deleted", "customerID", id)
	return nil
}
