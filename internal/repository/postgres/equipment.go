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

type equipmentTypeRepository struct {
	db *sql.DB
}

func NewEquipmentTypeRepository(db *sql.DB) repository.EquipmentTypeRepository {
	return &equipmentTypeRepository{db: db}
}

func (r *equipmentTypeRepository) Create(ctx context.Context, et *domain.EquipmentType) error {
	query := `INSERT INTO equipment_types (name, description, rate, deposit_amount, created_on) 
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	et.CreatedOn = time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query, et.Name, et.Description, et.Rate, et.DepositAmount, et.CreatedOn).Scan(&et.ID)
	return mapError(err, "equipment type", et.Name)
}

func (r *equipmentTypeRepository) GetByID(ctx context.Context, id int32) (*domain.EquipmentType, error) {
	et := &domain.EquipmentType{}
	query := `SELECT id, name, COALESCE(description, ''), rate, deposit_amount, created_on FROM equipment_types WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&et.ID, &et.Name, &et.Description, &et.Rate, &et.DepositAmount, &et.CreatedOn)
	if err != nil {
		return nil, mapError(err, "equipment type", id)
	}
	return et, nil
}

func (r *equipmentTypeRepository) Update(ctx context.Context, et *domain.EquipmentType) error {
	query := `UPDATE equipment_types SET name=$1, description=$2, rate=$3, deposit_amount=$4 WHERE id=$5`
	res, err := r.db.ExecContext(ctx, query, et.Name, et.Description, et.Rate, et.DepositAmount, et.ID)
	if err != nil {
		return mapError(err, "equipment type", et.ID)
	}
	return expectOneRow(res, "equipment type", et.ID)
}

func (r *equipmentTypeRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM equipment_types WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "equipment type", id)
	}
	return expectOneRow(res, "equipment type", id)
}

func (r *equipmentTypeRepository) List(ctx context.Context) ([]domain.EquipmentType, error) {
	query := `SELECT id, name, COALESCE(description, ''), rate, deposit_amount, created_on FROM equipment_types ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []domain.EquipmentType
	for rows.Next() {
		var et domain.EquipmentType
		if err := rows.Scan(&et.ID, &et.Name, &et.Description, &et.Rate, &et.DepositAmount, &et.CreatedOn); err != nil {
			return nil, err
		}
		types = append(types, et)
	}
	return types, rows.Err()
}

type equipmentRepository struct {
	db *sql.DB
}

func NewEquipmentRepository(db *sql.DB) repository.EquipmentRepository {
	return &equipmentRepository{db: db}
}

const equipmentSelect = `SELECT e.id, e.type_id, e.serial_number, e.purchase_date, e.condition, e.status, COALESCE(e.notes, ''), e.created_on,
	       t.id, t.name, COALESCE(t.description, ''), t.rate, t.deposit_amount, t.created_on
	FROM equipment e
	JOIN equipment_types t ON t.id = e.type_id`

func scanEquipment(row interface{ Scan(...any) error }, e *domain.Equipment) error {
	var purchaseDate sql.NullTime
	et := &domain.EquipmentType{}
	err := row.Scan(&e.ID, &e.TypeID, &e.SerialNumber, &purchaseDate, &e.Condition, &e.Status, &e.Notes, &e.CreatedOn,
		&et.ID, &et.Name, &et.Description, &et.Rate, &et.DepositAmount, &et.CreatedOn)
	if err != nil {
		return err
	}
	if purchaseDate.Valid {
		pd := purchaseDate.Time
		e.PurchaseDate = &pd
	}
	e.Type = et
	return nil
}

func (r *equipmentRepository) Create(ctx context.Context, e *domain.Equipment) error {
	query := `INSERT INTO equipment (type_id, serial_number, purchase_date, condition, status, notes, created_on) 
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	e.CreatedOn = time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query, e.TypeID, e.SerialNumber, e.PurchaseDate, e.Condition, e.Status, e.Notes, e.CreatedOn).Scan(&e.ID)
	return mapError(err, "equipment", e.SerialNumber)
}

func (r *equipmentRepository) GetByID(ctx context.Context, id int32) (*domain.Equipment, error) {
	e := &domain.Equipment{}
	if err := scanEquipment(r.db.QueryRowContext(ctx, equipmentSelect+` WHERE e.id = $1`, id), e); err != nil {
		return nil, mapError(err, "equipment", id)
	}
	return e, nil
}

// Update never overwrites a Rented status; only Reserve and Release move a unit
// in and out of Rented.
func (r *equipmentRepository) Update(ctx context.Context, e *domain.Equipment) error {
	query := `UPDATE equipment SET type_id=$1, serial_number=$2, purchase_date=$3, condition=$4,
	          status = CASE WHEN status = 'Rented' THEN status ELSE $5 END, notes=$6 WHERE id=$7`
	res, err := r.db.ExecContext(ctx, query, e.TypeID, e.SerialNumber, e.PurchaseDate, e.Condition, e.Status, e.Notes, e.ID)
	if err != nil {
		return mapError(err, "equipment", e.ID)
	}
	return expectOneRow(res, "equipment", e.ID)
}

func (r *equipmentRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "equipment", id)
	}
	return expectOneRow(res, "equipment", id)
}

func (r *equipmentRepository) List(ctx context.Context, status string) ([]domain.Equipment, error) {
	query := equipmentSelect
	var args []interface{}
	if status != "" {
		query += " WHERE e.status = $1"
		args = append(args, status)
	}
	query += " ORDER BY t.name, e.serial_number"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Equipment
	for rows.Next() {
		var e domain.Equipment
		if err := scanEquipment(rows, &e); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *equipmentRepository) Reserve(ctx context.Context, id int32) error {
	query := `UPDATE equipment SET status = $1 WHERE id = $2 AND status = $3`
	logger.DatabaseCall("UPDATE", "equipment reserve", "equipmentID", id)
	res, err := r.db.ExecContext(ctx, query, domain.EquipmentStatusRented, id, domain.EquipmentStatusAvailable)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "equipmentID", id)
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "equipmentID", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewConflictError(fmt.Sprintf("equipment %d is not available", id))
	}
	return nil
}

func (r *equipmentRepository) Release(ctx context.Context, id int32) (bool, error) {
	query := `UPDATE equipment SET status = $1 WHERE id = $2 AND status = $3`
	logger.DatabaseCall("UPDATE", "equipment release", "equipmentID", id)
	res, err := r.db.ExecContext(ctx, query, domain.EquipmentStatusAvailable, id, domain.EquipmentStatusRented)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "equipmentID", id)
		return false, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "equipmentID", id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *equipmentRepository) SetCondition(ctx context.Context, id int32, condition domain.EquipmentCondition, status domain.EquipmentStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE equipment SET condition = $1, status = $2 WHERE id = $3`, condition, status, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, "equipment", id)
}

// SyncStatusWithRentals flips Available/Rented units whose status disagrees with
// the rentals still holding them (open, not returned, not reopened after a
// payment). Units under maintenance are left alone.
func (r *equipmentRepository) SyncStatusWithRentals(ctx context.Context) (int64, error) {
	query := `
		WITH held AS (
			SELECT DISTINCT d.equipment_id
			FROM rental_details d
			JOIN rentals r ON r.id = d.rental_id
			WHERE r.status = ANY($1) AND r.actual_return_date IS NULL AND NOT r.equipment_released
		)
		UPDATE equipment e
		SET status = CASE WHEN e.id IN (SELECT equipment_id FROM held) THEN 'Rented' ELSE 'Available' END
		WHERE e.status <> 'Maintenance'
		  AND (e.status = 'Rented') <> (e.id IN (SELECT equipment_id FROM held))`

	logger.DatabaseCall("UPDATE", "equipment status sync")
	res, err := r.db.ExecContext(ctx, query, pq.Array(statusStrings(domain.OpenRentalStatuses)))
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return 0, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err)
	return n, err
}
