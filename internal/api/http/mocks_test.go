package http

import (
	"context"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockAuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}
func (m *MockAuthService) Signup(ctx context.Context, in domain.SignupInput) (*domain.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockAuthService) RefreshToken(ctx context.Context, refresh string) (*service.AuthResult, error) {
	args := m.Called(ctx, refresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}
func (m *MockAuthService) Logout(ctx context.Context, refresh string) error {
	args := m.Called(ctx, refresh)
	return args.Error(0)
}
func (m *MockAuthService) Authenticate(ctx context.Context, access string) (domain.Operator, error) {
	args := m.Called(ctx, access)
	return args.Get(0).(domain.Operator), args.Error(1)
}
func (m *MockAuthService) ParseRefresh(ctx context.Context, refresh string) (domain.Operator, error) {
	args := m.Called(ctx, refresh)
	return args.Get(0).(domain.Operator), args.Error(1)
}

// MockRentalService
type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) CreateRental(ctx context.Context, op domain.Operator, in domain.RentalInput) (*domain.Rental, error) {
	args := m.Called(ctx, op, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) UpdateRental(ctx context.Context, op domain.Operator, rentalID int32, in domain.RentalInput) (*domain.Rental, error) {
	args := m.Called(ctx, op, rentalID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) ReturnRental(ctx context.Context, op domain.Operator, rentalID int32, in domain.ReturnInput) (*domain.Rental, error) {
	args := m.Called(ctx, op, rentalID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) DeleteRental(ctx context.Context, op domain.Operator, rentalID int32) error {
	args := m.Called(ctx, op, rentalID)
	return args.Error(0)
}
func (m *MockRentalService) GetRental(ctx context.Context, rentalID int32) (*domain.Rental, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) ListRentals(ctx context.Context, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalService) QuoteRental(ctx context.Context, items []service.DraftItem) (*service.Quote, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Quote), args.Error(1)
}

// MockPaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) PaymentDefaults(ctx context.Context, rentalID int32) (*domain.PaymentDefaults, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentDefaults), args.Error(1)
}
func (m *MockPaymentService) RecordPayment(ctx context.Context, op domain.Operator, in domain.PaymentInput) (*domain.Payment, error) {
	args := m.Called(ctx, op, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) DeletePayment(ctx context.Context, op domain.Operator, paymentID int32) error {
	args := m.Called(ctx, op, paymentID)
	return args.Error(0)
}
func (m *MockPaymentService) GetPayment(ctx context.Context, paymentID int32) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) ListPayments(ctx context.Context, page, pageSize int32) ([]domain.Payment, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Payment), args.Get(1).(int32), args.Error(2)
}
func (m *MockPaymentService) RenderReceipt(ctx context.Context, paymentID int32) ([]byte, *domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(1) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]byte), args.Get(1).(*domain.Payment), args.Error(2)
}
