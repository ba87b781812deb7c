package postgres_test

import (
	"context"
	"testing"
	"time"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestCustomerRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewCustomerRepository(db)
	ctx := context.Background()

	c := &domain.Customer{FullName: "Budi", IdentityNumber: "3174000011112222", Status: domain.CustomerStatusActive}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO customers").
			WithArgs(c.FullName, c.IdentityNumber, c.Email, c.Phone, c.Address, c.Status, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		assert.NoError(t, repo.Create(ctx, c))
		assert.Equal(t, int32(1), c.ID)
	})

	t.Run("Duplicate Identity", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO customers").
			WillReturnError(&pq.Error{Code: "23505", Detail: "identity_number"})

		err := repo.Create(ctx, &domain.Customer{FullName: "Budi", IdentityNumber: "3174000011112222"})
		assert.True(t, domain.IsCode(err, domain.ErrCodeConflict))
	})
}

func TestCustomerRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewCustomerRepository(db)

	mock.ExpectQuery("SELECT id, full_name, identity_number").
		WithArgs("Active").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "identity_number", "email", "phone", "address", "status", "created_on"}).
			AddRow(1, "Budi", "317", "", "", "", "Active", time.Now()))

	customers, err := repo.List(context.Background(), "Active")
	assert.NoError(t, err)
	assert.Len(t, customers, 1)
	assert.Equal(t, domain.CustomerStatusActive, customers[0].Status)
}
