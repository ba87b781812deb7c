package service

import (
	"context"
	"fmt"
	"strings"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/logger"
	"camera-rental-backend/internal/repository"
)

type equipmentService struct {
	typeRepo      repository.EquipmentTypeRepository
	equipmentRepo repository.EquipmentRepository
}

func NewEquipmentService(typeRepo repository.EquipmentTypeRepository, equipmentRepo repository.EquipmentRepository) EquipmentService {
	return &equipmentService{typeRepo: typeRepo, equipmentRepo: equipmentRepo}
}

func validateType(et *domain.EquipmentType) error {
	et.Name = strings.TrimSpace(et.Name)
	if et.Name == "" {
		return domain.NewInvalidArgumentError("type name is required")
	}
	if et.Rate.IsNegative() {
		return domain.NewInvalidArgumentError("rate cannot be negative")
	}
	if et.DepositAmount.IsNegative() {
		return domain.NewInvalidArgumentError("deposit amount cannot be negative")
	}
	return nil
}

func (s *equipmentService) ListTypes(ctx context.Context) ([]domain.EquipmentType, error) {
	return s.typeRepo.List(ctx)
}

func (s *equipmentService) GetType(ctx context.Context, id int32) (*domain.EquipmentType, error) {
	return s.typeRepo.GetByID(ctx, id)
}

func (s *equipmentService) CreateType(ctx context.Context, et *domain.EquipmentType) error {
	if err := validateType(et); err != nil {
		return err
	}
	return s.typeRepo.Create(ctx, et)
}

// UpdateType changes the rate for future pricing only; stored rental lines keep
// the amounts they were priced with.
func (s *equipmentService) UpdateType(ctx context.Context, et *domain.EquipmentType) error {
	if err := validateType(et); err != nil {
		return err
	}
	return s.typeRepo.Update(ctx, et)
}

func (s *equipmentService) DeleteType(ctx context.Context, id int32) error {
	return s.typeRepo.Delete(ctx, id)
}

func (s *equipmentService) ListEquipment(ctx context.Context, status string) ([]domain.Equipment, error) {
	return s.equipmentRepo.List(ctx, status)
}

func (s *equipmentService) GetEquipment(ctx context.Context, id int32) (*domain.Equipment, error) {
	return s.equipmentRepo.GetByID(ctx, id)
}

func normalizeEquipment(eq *domain.Equipment) error {
	eq.SerialNumber = strings.TrimSpace(eq.SerialNumber)
	if eq.TypeID <= 0 {
		return domain.NewInvalidArgumentError("equipment type is required")
	}
	if eq.SerialNumber == "" {
		return domain.NewInvalidArgumentError("serial number is required")
	}
	if eq.Condition == "" {
		eq.Condition = domain.EquipmentConditionGood
	}
	if !eq.Condition.Valid() {
		return domain.NewInvalidArgumentError(fmt.Sprintf("unknown condition %q", eq.Condition))
	}
	switch eq.Status {
	case "":
		eq.Status = domain.EquipmentStatusAvailable
	case domain.EquipmentStatusAvailable, domain.EquipmentStatusMaintenance:
	case domain.EquipmentStatusRented:
		return domain.NewInvalidArgumentError("equipment becomes Rented only through a rental")
	default:
		return domain.NewInvalidArgumentError(fmt.Sprintf("unknown equipment status %q", eq.Status))
	}
	return nil
}

func (s *equipmentService) CreateEquipment(ctx context.Context, eq *domain.Equipment) error {
	if err := normalizeEquipment(eq); err != nil {
		return err
	}
	et, err := s.typeRepo.GetByID(ctx, eq.TypeID)
	if err != nil {
		return err
	}
	if err := s.equipmentRepo.Create(ctx, eq); err != nil {
		return err
	}
	eq.Type = et
	logger.Info("Equipment registered", "equipmentID", eq.ID, "serial", eq.SerialNumber)
	return nil
}

// UpdateEquipment edits a unit's catalog data. A unit that is out on rental
// keeps its status until the rental gives it back.
func (s *equipmentService) UpdateEquipment(ctx context.Context, eq *domain.Equipment) error {
	existing, err := s.equipmentRepo.GetByID(ctx, eq.ID)
	if err != nil {
		return err
	}
	if existing.Status == domain.EquipmentStatusRented {
		if eq.Status != "" && eq.Status != domain.EquipmentStatusRented {
			return domain.NewConflictError(fmt.Sprintf("equipment %s is rented", existing.SerialNumber))
		}
		eq.Status = ""
		if err := normalizeEquipment(eq); err != nil {
			return err
		}
		eq.Status = domain.EquipmentStatusRented
	} else if err := normalizeEquipment(eq); err != nil {
		return err
	}

	if eq.TypeID != existing.TypeID {
		if _, err := s.typeRepo.GetByID(ctx, eq.TypeID); err != nil {
			return err
		}
	}
	eq.CreatedOn = existing.CreatedOn
	return s.equipmentRepo.Update(ctx, eq)
}

func (s *equipmentService) DeleteEquipment(ctx context.Context, id int32) error {
	existing, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == domain.EquipmentStatusRented {
		return domain.NewConflictError(fmt.Sprintf("equipment %s is rented", existing.SerialNumber))
	}
	return s.equipmentRepo.Delete(ctx, id)
}
