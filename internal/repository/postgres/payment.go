package postgres

import (
	"context"
	"database/sql"
	"time"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentSelect = `SELECT p.id, p.rental_id, p.receipt_number, p.deposit_payment, p.rental_payment, p.payment_method, p.payment_date, p.processed_by,
	       r.id, r.customer_id, r.start_date, r.end_date, r.status, r.total_amount, r.processed_by, r.penalty_fee, COALESCE(r.notes, ''), r.created_on, r.updated_on,
	       c.id, c.full_name, c.identity_number, COALESCE(c.email, ''), COALESCE(c.phone, ''), COALESCE(c.address, ''), c.status, c.created_on
	FROM payments p
	JOIN rentals r ON r.id = p.rental_id
	JOIN customers c ON c.id = r.customer_id`

func scanPayment(row interface{ Scan(...any) error }, p *domain.Payment) error {
	rt := &domain.Rental{}
	c := &domain.Customer{}
	err := row.Scan(&p.ID, &p.RentalID, &p.ReceiptNumber, &p.DepositPayment, &p.RentalPayment, &p.PaymentMethod, &p.PaymentDate, &p.ProcessedBy,
		&rt.ID, &rt.CustomerID, &rt.StartDate, &rt.EndDate, &rt.Status, &rt.TotalAmount, &rt.ProcessedBy, &rt.PenaltyFee, &rt.Notes, &rt.CreatedOn, &rt.UpdatedOn,
		&c.ID, &c.FullName, &c.IdentityNumber, &c.Email, &c.Phone, &c.Address, &c.Status, &c.CreatedOn)
	if err != nil {
		return err
	}
	rt.Customer = c
	p.Rental = rt
	return nil
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (rental_id, receipt_number, deposit_payment, rental_payment, payment_method, payment_date, processed_by) 
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now().UTC()
	}
	err := r.db.QueryRowContext(ctx, query, p.RentalID, p.ReceiptNumber, p.DepositPayment, p.RentalPayment, p.PaymentMethod, p.PaymentDate, p.ProcessedBy).Scan(&p.ID)
	return mapError(err, "payment", p.ReceiptNumber)
}

func (r *paymentRepository) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	p := &domain.Payment{}
	if err := scanPayment(r.db.QueryRowContext(ctx, paymentSelect+` WHERE p.id = $1`, id), p); err != nil {
		return nil, mapError(err, "payment", id)
	}
	return p, nil
}

func (r *paymentRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, "payment", id)
}

func (r *paymentRepository) List(ctx context.Context, page, pageSize int32) ([]domain.Payment, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM payments`).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, paymentSelect+" ORDER BY p.payment_date DESC LIMIT $1 OFFSET $2", pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, count, rows.Err()
}

func (r *paymentRepository) ListByRental(ctx context.Context, rentalID int32) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, paymentSelect+` WHERE p.rental_id = $1 ORDER BY p.payment_date`, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
