package service

import (
	"context"
	"time"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/utils"

	"github.com/oklog/ulid/v2"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Signup(ctx context.Context, in domain.SignupInput) (*domain.User, error)
	RefreshToken(ctx context.Context, refresh string) (*AuthResult, error)
	Logout(ctx context.Context, refresh string) error
	Authenticate(ctx context.Context, access string) (domain.Operator, error)
	ParseRefresh(ctx context.Context, refresh string) (domain.Operator, error)
}

type CustomerService interface {
	ListCustomers(ctx context.Context, status string) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id int32) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer *domain.Customer) error
	UpdateCustomer(ctx context.Context, customer *domain.Customer) error
	DeleteCustomer(ctx context.Context, id int32) error
}

type EquipmentService interface {
	ListTypes(ctx context.Context) ([]domain.EquipmentType, error)
	GetType(ctx context.Context, id int32) (*domain.EquipmentType, error)
	CreateType(ctx context.Context, et *domain.EquipmentType) error
	UpdateType(ctx context.Context, et *domain.EquipmentType) error
	DeleteType(ctx context.Context, id int32) error

	ListEquipment(ctx context.Context, status string) ([]domain.Equipment, error)
	GetEquipment(ctx context.Context, id int32) (*domain.Equipment, error)
	CreateEquipment(ctx context.Context, eq *domain.Equipment) error
	UpdateEquipment(ctx context.Context, eq *domain.Equipment) error
	DeleteEquipment(ctx context.Context, id int32) error
}

type RentalService interface {
	CreateRental(ctx context.Context, op domain.Operator, in domain.RentalInput) (*domain.Rental, error)
	UpdateRental(ctx context.Context, op domain.Operator, rentalID int32, in domain.RentalInput) (*domain.Rental, error)
	ReturnRental(ctx context.Context, op domain.Operator, rentalID int32, in domain.ReturnInput) (*domain.Rental, error)
	DeleteRental(ctx context.Context, op domain.Operator, rentalID int32) error
	GetRental(ctx context.Context, rentalID int32) (*domain.Rental, error)
	ListRentals(ctx context.Context, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	QuoteRental(ctx context.Context, items []DraftItem) (*Quote, error)
}

type PaymentService interface {
	PaymentDefaults(ctx context.Context, rentalID int32) (*domain.PaymentDefaults, error)
	RecordPayment(ctx context.Context, op domain.Operator, in domain.PaymentInput) (*domain.Payment, error)
	DeletePayment(ctx context.Context, op domain.Operator, paymentID int32) error
	GetPayment(ctx context.Context, paymentID int32) (*domain.Payment, error)
	ListPayments(ctx context.Context, page, pageSize int32) ([]domain.Payment, int32, error)
	RenderReceipt(ctx context.Context, paymentID int32) ([]byte, *domain.Payment, error)
}

// Notifier is told about completed workflows. Implementations must not block.
type Notifier interface {
	RentalCreated(ctx context.Context, rental *domain.Rental, customer *domain.Customer)
	PaymentRecorded(ctx context.Context, payment *domain.Payment, customer *domain.Customer, receipt []byte)
}

type ReceiptRenderer interface {
	Render(payment *domain.Payment, details []domain.RentalDetail) ([]byte, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

type systemClock struct{}

func NewSystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now().UTC() }

type ulidGenerator struct{}

// NewULIDGenerator returns sortable, unique receipt numbers.
func NewULIDGenerator() IDGenerator { return ulidGenerator{} }

func (ulidGenerator) NewID() string { return ulid.Make().String() }

// today is the calendar date of the clock's current time
func today(c Clock) time.Time {
	return utils.Truncate(c.Now())
}
