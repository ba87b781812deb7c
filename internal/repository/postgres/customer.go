package postgres

import (
	"context"
	"database/sql"
	"time"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/repository"
)

type customerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, full_name, identity_number, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''), status, created_on`

func scanCustomer(row interface{ Scan(...any) error }, c *domain.Customer) error {
	return row.Scan(&c.ID, &c.FullName, &c.IdentityNumber, &c.Email, &c.Phone, &c.Address, &c.Status, &c.CreatedOn)
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	query := `INSERT INTO customers (full_name, identity_number, email, phone, address, status, created_on) 
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	c.CreatedOn = time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query, c.FullName, c.IdentityNumber, c.Email, c.Phone, c.Address, c.Status, c.CreatedOn).Scan(&c.ID)
	return mapError(err, "customer", c.IdentityNumber)
}

func (r *customerRepository) GetByID(ctx context.Context, id int32) (*domain.Customer, error) {
	c := &domain.Customer{}
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	if err := scanCustomer(r.db.QueryRowContext(ctx, query, id), c); err != nil {
		return nil, mapError(err, "customer", id)
	}
	return c, nil
}

func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	query := `UPDATE customers SET full_name=$1, identity_number=$2, email=$3, phone=$4, address=$5, status=$6 WHERE id=$7`
	res, err := r.db.ExecContext(ctx, query, c.FullName, c.IdentityNumber, c.Email, c.Phone, c.Address, c.Status, c.ID)
	if err != nil {
		return mapError(err, "customer", c.ID)
	}
	return expectOneRow(res, "customer", c.ID)
}

func (r *customerRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "customer", id)
	}
	return expectOneRow(res, "customer", id)
}

func (r *customerRepository) List(ctx context.Context, status string) ([]domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	var args []interface{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY full_name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
