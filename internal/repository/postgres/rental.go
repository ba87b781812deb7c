package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/logger"
	"camera-rental-backend/internal/repository"

	"github.com/lib/pq"
)

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func statusStrings(statuses []domain.RentalStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

const rentalSelect = `SELECT r.id, r.customer_id, r.start_date, r.end_date, r.status, r.total_amount, r.processed_by, r.actual_return_date, r.penalty_fee, r.equipment_released, COALESCE(r.notes, ''), r.created_on, r.updated_on,
	       c.id, c.full_name, c.identity_number, COALESCE(c.email, ''), COALESCE(c.phone, ''), COALESCE(c.address, ''), c.status, c.created_on
	FROM rentals r
	JOIN customers c ON c.id = r.customer_id`

func scanRental(row interface{ Scan(...any) error }, rt *domain.Rental) error {
	var returned sql.NullTime
	c := &domain.Customer{}
	err := row.Scan(&rt.ID, &rt.CustomerID, &rt.StartDate, &rt.EndDate, &rt.Status, &rt.TotalAmount, &rt.ProcessedBy, &returned, &rt.PenaltyFee, &rt.EquipmentReleased, &rt.Notes, &rt.CreatedOn, &rt.UpdatedOn,
		&c.ID, &c.FullName, &c.IdentityNumber, &c.Email, &c.Phone, &c.Address, &c.Status, &c.CreatedOn)
	if err != nil {
		return err
	}
	if returned.Valid {
		t := returned.Time
		rt.ActualReturnDate = &t
	}
	rt.Customer = c
	return nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (customer_id, start_date, end_date, status, total_amount, processed_by, penalty_fee, notes, created_on, updated_on) 
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	now := time.Now().UTC()
	rt.CreatedOn = now
	rt.UpdatedOn = now
	err := r.db.QueryRowContext(ctx, query, rt.CustomerID, rt.StartDate, rt.EndDate, rt.Status, rt.TotalAmount, rt.ProcessedBy, rt.PenaltyFee, rt.Notes, rt.CreatedOn, rt.UpdatedOn).Scan(&rt.ID)
	return mapError(err, "rental", rt.CustomerID)
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	rt := &domain.Rental{}
	if err := scanRental(r.db.QueryRowContext(ctx, rentalSelect+` WHERE r.id = $1`, id), rt); err != nil {
		return nil, mapError(err, "rental", id)
	}
	return rt, nil
}

// Update writes the header fields of an open rental. Status is left to
// TransitionStatus, so a rental completed by a concurrent payment is not
// reopened here; that case is a conflict.
func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	query := `UPDATE rentals SET customer_id=$1, start_date=$2, end_date=$3, total_amount=$4, actual_return_date=$5, penalty_fee=$6, notes=$7, updated_on=$8
	          WHERE id=$9 AND status = ANY($10)`
	rt.UpdatedOn = time.Now().UTC()
	logger.DatabaseCall("UPDATE", "rentals header", "rentalID", rt.ID)
	res, err := r.db.ExecContext(ctx, query, rt.CustomerID, rt.StartDate, rt.EndDate, rt.TotalAmount, rt.ActualReturnDate, rt.PenaltyFee, rt.Notes, rt.UpdatedOn, rt.ID,
		pq.Array(statusStrings(domain.OpenRentalStatuses)))
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "rentalID", rt.ID)
		return mapError(err, "rental", rt.ID)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "rentalID", rt.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewConflictError(fmt.Sprintf("rental %d is no longer open", rt.ID))
	}
	return nil
}

// Delete removes the rental header. Line items go with it through ON DELETE CASCADE.
func (r *rentalRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "rental", id)
	}
	return expectOneRow(res, "rental", id)
}

func (r *rentalRepository) List(ctx context.Context, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	offset := (page - 1) * pageSize
	where := ""
	args := []interface{}{}
	argIdx := 1
	if status != "" {
		where = " WHERE r.status = $1"
		args = append(args, status)
		argIdx++
	}

	var count int32
	countSql := "SELECT count(*) FROM rentals r" + where
	if err := r.db.QueryRowContext(ctx, countSql, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := rentalSelect + where + fmt.Sprintf(" ORDER BY r.created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		var rt domain.Rental
		if err := scanRental(rows, &rt); err != nil {
			return nil, 0, err
		}
		rentals = append(rentals, rt)
	}
	return rentals, count, rows.Err()
}

func (r *rentalRepository) TransitionStatus(ctx context.Context, id int32, from []domain.RentalStatus, to domain.RentalStatus) error {
	query := `UPDATE rentals SET status = $1, updated_on = $2 WHERE id = $3 AND status = ANY($4)`
	logger.DatabaseCall("UPDATE", "rentals status transition", "rentalID", id, "to", to)
	res, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, pq.Array(statusStrings(from)))
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "rentalID", id)
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "rentalID", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewConflictError(fmt.Sprintf("rental %d cannot move to %s from its current status", id, to))
	}
	return nil
}

// Reopen moves a Completed rental back to Active and marks its equipment as
// already released, so neither the overdue job nor the status sync treats the
// rental as holding units again.
func (r *rentalRepository) Reopen(ctx context.Context, id int32) error {
	query := `UPDATE rentals SET status = $1, equipment_released = TRUE, updated_on = $2 WHERE id = $3 AND status = $4`
	logger.DatabaseCall("UPDATE", "rentals reopen", "rentalID", id)
	res, err := r.db.ExecContext(ctx, query, domain.RentalStatusActive, time.Now().UTC(), id, domain.RentalStatusCompleted)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "rentalID", id)
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "rentalID", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewConflictError(fmt.Sprintf("rental %d is not completed", id))
	}
	return nil
}

// MarkOverdue flags Active rentals whose end date is before asOf and whose
// equipment is still out.
func (r *rentalRepository) MarkOverdue(ctx context.Context, asOf time.Time) ([]int32, error) {
	query := `UPDATE rentals SET status = $1, updated_on = NOW()
	          WHERE status = $2 AND end_date < $3 AND actual_return_date IS NULL AND NOT equipment_released
	          RETURNING id`
	rows, err := r.db.QueryContext(ctx, query, domain.RentalStatusOverdue, domain.RentalStatusActive, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *rentalRepository) CreateDetails(ctx context.Context, details []domain.RentalDetail) error {
	query := `INSERT INTO rental_details (rental_id, equipment_id, time_quantity, subtotal, required_deposit) 
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return runInTx(ctx, r.db, func(tx *sql.Tx) error {
		for i := range details {
			d := &details[i]
			if err := tx.QueryRowContext(ctx, query, d.RentalID, d.EquipmentID, d.TimeQuantity, d.Subtotal, d.RequiredDeposit).Scan(&d.ID); err != nil {
				return mapError(err, "rental detail", d.EquipmentID)
			}
		}
		return nil
	})
}

func (r *rentalRepository) ListDetails(ctx context.Context, rentalID int32) ([]domain.RentalDetail, error) {
	query := `SELECT d.id, d.rental_id, d.equipment_id, d.time_quantity, d.subtotal, d.required_deposit,
	                 e.id, e.type_id, e.serial_number, e.purchase_date, e.condition, e.status, COALESCE(e.notes, ''), e.created_on,
	                 t.id, t.name, COALESCE(t.description, ''), t.rate, t.deposit_amount, t.created_on
	          FROM rental_details d
	          JOIN equipment e ON e.id = d.equipment_id
	          JOIN equipment_types t ON t.id = e.type_id
	          WHERE d.rental_id = $1
	          ORDER BY d.id`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []domain.RentalDetail
	for rows.Next() {
		var d domain.RentalDetail
		var purchaseDate sql.NullTime
		e := &domain.Equipment{}
		et := &domain.EquipmentType{}
		if err := rows.Scan(&d.ID, &d.RentalID, &d.EquipmentID, &d.TimeQuantity, &d.Subtotal, &d.RequiredDeposit,
			&e.ID, &e.TypeID, &e.SerialNumber, &purchaseDate, &e.Condition, &e.Status, &e.Notes, &e.CreatedOn,
			&et.ID, &et.Name, &et.Description, &et.Rate, &et.DepositAmount, &et.CreatedOn); err != nil {
			return nil, err
		}
		if purchaseDate.Valid {
			pd := purchaseDate.Time
			e.PurchaseDate = &pd
		}
		e.Type = et
		d.Equipment = e
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *rentalRepository) UpsertDetail(ctx context.Context, d *domain.RentalDetail) error {
	query := `INSERT INTO rental_details (rental_id, equipment_id, time_quantity, subtotal, required_deposit) 
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (rental_id, equipment_id) DO UPDATE
	          SET time_quantity = EXCLUDED.time_quantity, subtotal = EXCLUDED.subtotal, required_deposit = EXCLUDED.required_deposit
	          RETURNING id`
	err := r.db.QueryRowContext(ctx, query, d.RentalID, d.EquipmentID, d.TimeQuantity, d.Subtotal, d.RequiredDeposit).Scan(&d.ID)
	return mapError(err, "rental detail", d.EquipmentID)
}

func (r *rentalRepository) DeleteDetail(ctx context.Context, rentalID, equipmentID int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rental_details WHERE rental_id = $1 AND equipment_id = $2`, rentalID, equipmentID)
	return err
}

func (r *rentalRepository) DeleteDetails(ctx context.Context, rentalID int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rental_details WHERE rental_id = $1`, rentalID)
	return err
}
