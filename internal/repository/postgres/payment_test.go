package postgres_test

import (
	"context"
	"testing"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPaymentRepository(db)

	p := &domain.Payment{
		RentalID:       4,
		ReceiptNumber:  "01HZY3K0000000000000000000",
		DepositPayment: decimal.NewFromInt(100),
		RentalPayment:  decimal.NewFromInt(250),
		PaymentMethod:  domain.PaymentMethodQRIS,
		ProcessedBy:    7,
	}

	mock.ExpectQuery("INSERT INTO payments").
		WithArgs(p.RentalID, p.ReceiptNumber, p.DepositPayment, p.RentalPayment, p.PaymentMethod, sqlmock.AnyArg(), p.ProcessedBy).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	err = repo.Create(context.Background(), p)
	assert.NoError(t, err)
	assert.Equal(t, int32(9), p.ID)
	assert.False(t, p.PaymentDate.IsZero())
}

func TestPaymentRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPaymentRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM payments").
			WithArgs(int32(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Delete(ctx, 9))
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM payments").
			WithArgs(int32(10)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		err := repo.Delete(ctx, 10)
		assert.True(t, domain.IsCode(err, domain.ErrCodeNotFound))
	})
}
