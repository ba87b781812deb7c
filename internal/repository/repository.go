package repository

import (
	"context"
	"time"

	"camera-rental-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int32) (*domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, status string) ([]domain.Customer, error)
}

type EquipmentTypeRepository interface {
	Create(ctx context.Context, et *domain.EquipmentType) error
	GetByID(ctx context.Context, id int32) (*domain.EquipmentType, error)
	Update(ctx context.Context, et *domain.EquipmentType) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context) ([]domain.EquipmentType, error)
}

type EquipmentRepository interface {
	Create(ctx context.Context, eq *domain.Equipment) error
	GetByID(ctx context.Context, id int32) (*domain.Equipment, error)
	Update(ctx context.Context, eq *domain.Equipment) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, status string) ([]domain.Equipment, error)

	// Reserve moves a unit from Available to Rented. It fails with a conflict
	// when the unit is not Available at the time of the update.
	Reserve(ctx context.Context, id int32) error
	// Release moves a unit from Rented back to Available. The returned bool is
	// false when the unit was not Rented and nothing changed.
	Release(ctx context.Context, id int32) (bool, error)
	SetCondition(ctx context.Context, id int32, condition domain.EquipmentCondition, status domain.EquipmentStatus) error
	SyncStatusWithRentals(ctx context.Context) (int64, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	// Update writes header fields of an open rental; it never changes status.
	Update(ctx context.Context, rental *domain.Rental) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	// TransitionStatus sets the status only if the current one is in from.
	TransitionStatus(ctx context.Context, id int32, from []domain.RentalStatus, to domain.RentalStatus) error
	// Reopen moves a Completed rental back to Active with its equipment marked released.
	Reopen(ctx context.Context, id int32) error
	MarkOverdue(ctx context.Context, asOf time.Time) ([]int32, error)

	// Line items
	CreateDetails(ctx context.Context, details []domain.RentalDetail) error
	ListDetails(ctx context.Context, rentalID int32) ([]domain.RentalDetail, error)
	UpsertDetail(ctx context.Context, detail *domain.RentalDetail) error
	DeleteDetail(ctx context.Context, rentalID, equipmentID int32) error
	DeleteDetails(ctx context.Context, rentalID int32) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id int32) (*domain.Payment, error)
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, page, pageSize int32) ([]domain.Payment, int32, error)
	ListByRental(ctx context.Context, rentalID int32) ([]domain.Payment, error)
}
