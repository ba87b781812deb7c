package postgres

import (
	"database/sql"

	"camera-rental-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.CustomerRepository
	repository.EquipmentTypeRepository
	repository.EquipmentRepository
	repository.RentalRepository
	repository.PaymentRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                      db,
		UserRepository:          NewUserRepository(db),
		CustomerRepository:      NewCustomerRepository(db),
		EquipmentTypeRepository: NewEquipmentTypeRepository(db),
		EquipmentRepository:     NewEquipmentRepository(db),
		RentalRepository:        NewRentalRepository(db),
		PaymentRepository:       NewPaymentRepository(db),
	}
}

// DB exposes the underlying pool for jobs that run ad-hoc statements.
func (s *Store) DB() *sql.DB {
	return s.db
}
