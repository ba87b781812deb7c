package service

import (
	"context"
	"fmt"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/logger"
	"camera-rental-backend/internal/metrics"
	"camera-rental-backend/internal/repository"
	"camera-rental-backend/internal/saga"
	"camera-rental-backend/internal/utils"

	"github.com/shopspring/decimal"
)

type rentalService struct {
	rentalRepo    repository.RentalRepository
	equipmentRepo repository.EquipmentRepository
	customerRepo  repository.CustomerRepository
	paymentRepo   repository.PaymentRepository
	notifier      Notifier
	clock         Clock
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	equipmentRepo repository.EquipmentRepository,
	customerRepo repository.CustomerRepository,
	paymentRepo repository.PaymentRepository,
	notifier Notifier,
	clock Clock,
) RentalService {
	return &rentalService{
		rentalRepo:    rentalRepo,
		equipmentRepo: equipmentRepo,
		customerRepo:  customerRepo,
		paymentRepo:   paymentRepo,
		notifier:      notifier,
		clock:         clock,
	}
}

func newSaga(name string) *saga.Saga {
	return saga.New(name).OnCompensationFailure(metrics.RecordCompensationFailure)
}

func recordOutcome(workflow string, err error) {
	if err != nil {
		metrics.RecordWorkflow(workflow, domain.CodeOf(err))
		return
	}
	metrics.RecordWorkflow(workflow, "success")
}

// validateRentalInput runs every check that needs no store access.
func validateRentalInput(in domain.RentalInput) error {
	if in.CustomerID <= 0 {
		return domain.NewInvalidArgumentError("Please select a customer")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return domain.NewInvalidArgumentError("Please select rental dates")
	}
	if in.EndDate.Before(in.StartDate) {
		return domain.NewInvalidArgumentError("End date must be after start date")
	}
	if len(in.Items) == 0 {
		return domain.NewInvalidArgumentError("Please add at least one equipment")
	}
	seen := make(map[int32]bool, len(in.Items))
	for _, item := range in.Items {
		if item.EquipmentID <= 0 {
			return domain.NewInvalidArgumentError("equipment id is required")
		}
		if seen[item.EquipmentID] {
			return domain.NewInvalidArgumentError("This equipment is already added")
		}
		seen[item.EquipmentID] = true
		if item.Days < 1 {
			return domain.NewInvalidArgumentError(fmt.Sprintf("days for equipment %d must be at least 1", item.EquipmentID))
		}
	}
	return nil
}

// priceItems loads each unit with its type and builds the detail rows. Units in
// held are already part of the rental and may be Rented; every other unit must
// be Available.
func (s *rentalService) priceItems(ctx context.Context, rentalID int32, items []domain.LineItem, held map[int32]bool) ([]domain.RentalDetail, utils.RentalTotals, error) {
	details := make([]domain.RentalDetail, 0, len(items))
	prices := make([]utils.LinePrice, 0, len(items))
	for _, item := range items {
		unit, err := s.equipmentRepo.GetByID(ctx, item.EquipmentID)
		if err != nil {
			return nil, utils.RentalTotals{}, err
		}
		if !held[unit.ID] && unit.Status != domain.EquipmentStatusAvailable {
			return nil, utils.RentalTotals{}, domain.NewConflictError(fmt.Sprintf("equipment %s is %s", unit.SerialNumber, unit.Status))
		}
		if unit.Type == nil {
			return nil, utils.RentalTotals{}, fmt.Errorf("equipment %d loaded without its type", unit.ID)
		}
		price := utils.PriceLine(unit.Type, unit.ID, item.Days)
		prices = append(prices, price)
		details = append(details, domain.RentalDetail{
			RentalID:        rentalID,
			EquipmentID:     unit.ID,
			Equipment:       unit,
			TimeQuantity:    item.Days,
			Subtotal:        price.Subtotal,
			RequiredDeposit: price.RequiredDeposit,
		})
	}
	return details, utils.SumLines(prices), nil
}

func (s *rentalService) activeCustomer(ctx context.Context, id int32) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer.Status != domain.CustomerStatusActive {
		return nil, domain.NewConflictError(fmt.Sprintf("customer %s is not active", customer.FullName))
	}
	return customer, nil
}

func equipmentIDs(details []domain.RentalDetail) []int32 {
	ids := make([]int32, len(details))
	for i, d := range details {
		ids[i] = d.EquipmentID
	}
	return ids
}

func (s *rentalService) CreateRental(ctx context.Context, op domain.Operator, in domain.RentalInput) (rental *domain.Rental, err error) {
	logger.EnterMethod("rentalService.CreateRental", "operatorID", op.ID, "customerID", in.CustomerID, "items", len(in.Items))
	defer func() {
		recordOutcome("create_rental", err)
		if err != nil {
			logger.ExitMethodWithError("rentalService.CreateRental", err, "operatorID", op.ID)
		}
	}()

	if err := validateRentalInput(in); err != nil {
		return nil, err
	}

	customer, err := s.activeCustomer(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	details, totals, err := s.priceItems(ctx, 0, in.Items, nil)
	if err != nil {
		return nil, err
	}
	ids := equipmentIDs(details)

	rental = &domain.Rental{
		CustomerID:  in.CustomerID,
		StartDate:   utils.Truncate(in.StartDate),
		EndDate:     utils.Truncate(in.EndDate),
		Status:      domain.RentalStatusActive,
		TotalAmount: totals.RentalTotal,
		ProcessedBy: op.ID,
		PenaltyFee:  decimal.Zero,
		Notes:       in.Notes,
	}

	err = newSaga("create_rental").
		AddStep(saga.Step{
			Name: "insert_header",
			Action: func(ctx context.Context) error {
				if err := s.rentalRepo.Create(ctx, rental); err != nil {
					return err
				}
				for i := range details {
					details[i].RentalID = rental.ID
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.rentalRepo.Delete(ctx, rental.ID)
			},
		}).
		AddStep(saga.Step{
			Name: "insert_details",
			Action: func(ctx context.Context) error {
				return s.rentalRepo.CreateDetails(ctx, details)
			},
			Compensate: func(ctx context.Context) error {
				return s.rentalRepo.DeleteDetails(ctx, rental.ID)
			},
		}).
		AddStep(saga.Step{
			Name: "reserve_equipment",
			Action: func(ctx context.Context) error {
				return reserveUnits(ctx, s.equipmentRepo, ids)
			},
			Compensate: func(ctx context.Context) error {
				_, err := releaseUnits(ctx, s.equipmentRepo, ids)
				return err
			},
		}).
		Execute(ctx)
	if err != nil {
		return nil, err
	}

	for i := range details {
		details[i].Equipment.Status = domain.EquipmentStatusRented
	}
	rental.Customer = customer
	rental.Details = details

	logger.Info("Rental created", "rentalID", rental.ID, "operatorID", op.ID, "total", rental.TotalAmount.String(), "deposit", totals.DepositTotal.String())
	s.notifier.RentalCreated(ctx, rental, customer)
	return rental, nil
}

// diffItems splits the revised line items against the stored ones.
func diffItems(current []domain.RentalDetail, revised []domain.LineItem) (added, removed []int32, kept map[int32]bool) {
	currentIDs := make(map[int32]bool, len(current))
	for _, d := range current {
		currentIDs[d.EquipmentID] = true
	}
	revisedIDs := make(map[int32]bool, len(revised))
	kept = make(map[int32]bool)
	for _, item := range revised {
		revisedIDs[item.EquipmentID] = true
		if currentIDs[item.EquipmentID] {
			kept[item.EquipmentID] = true
		} else {
			added = append(added, item.EquipmentID)
		}
	}
	for _, d := range current {
		if !revisedIDs[d.EquipmentID] {
			removed = append(removed, d.EquipmentID)
		}
	}
	return added, removed, kept
}

func (s *rentalService) UpdateRental(ctx context.Context, op domain.Operator, rentalID int32, in domain.RentalInput) (updated *domain.Rental, err error) {
	logger.EnterMethod("rentalService.UpdateRental", "operatorID", op.ID, "rentalID", rentalID)
	defer func() {
		recordOutcome("update_rental", err)
		if err != nil {
			logger.ExitMethodWithError("rentalService.UpdateRental", err, "rentalID", rentalID)
		}
	}()

	if err := validateRentalInput(in); err != nil {
		return nil, err
	}

	current, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !current.Status.IsOpen() {
		return nil, domain.NewConflictError(fmt.Sprintf("rental %d is %s and can no longer be edited", rentalID, current.Status))
	}
	if !current.HoldsEquipment() {
		return nil, domain.NewConflictError(fmt.Sprintf("rental %d no longer holds its equipment and can no longer be edited", rentalID))
	}

	customer := current.Customer
	if customer == nil || in.CustomerID != current.CustomerID {
		if customer, err = s.activeCustomer(ctx, in.CustomerID); err != nil {
			return nil, err
		}
	}

	currentDetails, err := s.rentalRepo.ListDetails(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	added, removed, kept := diffItems(currentDetails, in.Items)

	revised, totals, err := s.priceItems(ctx, rentalID, in.Items, kept)
	if err != nil {
		return nil, err
	}

	previous := *current
	updated = &domain.Rental{}
	*updated = *current
	updated.CustomerID = in.CustomerID
	updated.StartDate = utils.Truncate(in.StartDate)
	updated.EndDate = utils.Truncate(in.EndDate)
	updated.Notes = in.Notes
	updated.TotalAmount = totals.RentalTotal

	previousByEquipment := make(map[int32]domain.RentalDetail, len(currentDetails))
	for _, d := range currentDetails {
		previousByEquipment[d.EquipmentID] = d
	}

	restoreLines := func(ctx context.Context) error {
		var firstErr error
		for _, id := range added {
			if err := s.rentalRepo.DeleteDetail(ctx, rentalID, id); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		for id := range kept {
			prev := previousByEquipment[id]
			if err := s.rentalRepo.UpsertDetail(ctx, &prev); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	reinsertRemoved := func(ctx context.Context) error {
		var firstErr error
		for _, id := range removed {
			prev := previousByEquipment[id]
			if err := s.rentalRepo.UpsertDetail(ctx, &prev); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	var released []int32
	err = newSaga("update_rental").
		AddStep(saga.Step{
			Name: "reserve_added",
			Action: func(ctx context.Context) error {
				return reserveUnits(ctx, s.equipmentRepo, added)
			},
			Compensate: func(ctx context.Context) error {
				_, err := releaseUnits(ctx, s.equipmentRepo, added)
				return err
			},
		}).
		AddStep(saga.Step{
			Name: "update_header",
			Action: func(ctx context.Context) error {
				return s.rentalRepo.Update(ctx, updated)
			},
			Compensate: func(ctx context.Context) error {
				return s.rentalRepo.Update(ctx, &previous)
			},
		}).
		AddStep(saga.Step{
			Name: "upsert_lines",
			Action: func(ctx context.Context) error {
				for i := range revised {
					if err := s.rentalRepo.UpsertDetail(ctx, &revised[i]); err != nil {
						if rbErr := restoreLines(context.WithoutCancel(ctx)); rbErr != nil {
							logger.ErrorContext(ctx, "Failed to restore rental lines", "rentalID", rentalID, "error", rbErr)
						}
						return err
					}
				}
				return nil
			},
			Compensate: restoreLines,
		}).
		AddStep(saga.Step{
			Name: "delete_removed_lines",
			Action: func(ctx context.Context) error {
				for _, id := range removed {
					if err := s.rentalRepo.DeleteDetail(ctx, rentalID, id); err != nil {
						if rbErr := reinsertRemoved(context.WithoutCancel(ctx)); rbErr != nil {
							logger.ErrorContext(ctx, "Failed to reinsert removed rental lines", "rentalID", rentalID, "error", rbErr)
						}
						return err
					}
				}
				return nil
			},
			Compensate: reinsertRemoved,
		}).
		AddStep(saga.Step{
			Name: "release_removed",
			Action: func(ctx context.Context) error {
				var err error
				released, err = releaseUnits(ctx, s.equipmentRepo, removed)
				return err
			},
			Compensate: func(ctx context.Context) error {
				return reserveUnits(ctx, s.equipmentRepo, released)
			},
		}).
		Execute(ctx)
	if err != nil {
		return nil, err
	}

	for i := range revised {
		if revised[i].Equipment != nil {
			revised[i].Equipment.Status = domain.EquipmentStatusRented
		}
	}
	updated.Customer = customer
	updated.Details = revised

	logger.Info("Rental updated", "rentalID", rentalID, "operatorID", op.ID, "added", len(added), "removed", len(removed), "total", updated.TotalAmount.String())
	return updated, nil
}

func (s *rentalService) ReturnRental(ctx context.Context, op domain.Operator, rentalID int32, in domain.ReturnInput) (updated *domain.Rental, err error) {
	logger.EnterMethod("rentalService.ReturnRental", "operatorID", op.ID, "rentalID", rentalID)
	defer func() {
		recordOutcome("return_rental", err)
		if err != nil {
			logger.ExitMethodWithError("rentalService.ReturnRental", err, "rentalID", rentalID)
		}
	}()

	if in.PenaltyFee != nil && in.PenaltyFee.IsNegative() {
		return nil, domain.NewInvalidArgumentError("penalty fee cannot be negative")
	}
	for _, c := range in.Conditions {
		if !c.Condition.Valid() {
			return nil, domain.NewInvalidArgumentError(fmt.Sprintf("unknown condition %q", c.Condition))
		}
	}

	current, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !current.Status.IsOpen() {
		return nil, domain.NewConflictError(fmt.Sprintf("rental %d is %s", rentalID, current.Status))
	}
	if current.ActualReturnDate != nil {
		return nil, domain.NewConflictError(fmt.Sprintf("rental %d was already returned", rentalID))
	}
	if current.EquipmentReleased {
		return nil, domain.NewConflictError(fmt.Sprintf("rental %d equipment was already released by a payment", rentalID))
	}

	returnDate := today(s.clock)
	if !in.ReturnDate.IsZero() {
		returnDate = utils.Truncate(in.ReturnDate)
	}
	if returnDate.Before(current.StartDate) {
		return nil, domain.NewInvalidArgumentError("return date cannot be before the start date")
	}

	details, err := s.rentalRepo.ListDetails(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	conditions := make(map[int32]domain.EquipmentCondition, len(details))
	previousCondition := make(map[int32]domain.EquipmentCondition, len(details))
	for _, d := range details {
		conditions[d.EquipmentID] = domain.EquipmentConditionGood
		if d.Equipment != nil {
			previousCondition[d.EquipmentID] = d.Equipment.Condition
		}
	}
	for _, c := range in.Conditions {
		if _, ok := conditions[c.EquipmentID]; !ok {
			return nil, domain.NewInvalidArgumentError(fmt.Sprintf("equipment %d is not part of rental %d", c.EquipmentID, rentalID))
		}
		conditions[c.EquipmentID] = c.Condition
	}

	var good, damaged []int32
	for _, d := range details {
		if conditions[d.EquipmentID] == domain.EquipmentConditionGood {
			good = append(good, d.EquipmentID)
		} else {
			damaged = append(damaged, d.EquipmentID)
		}
	}

	penalty := utils.DefaultPenalty(details, current.EndDate, returnDate)
	if in.PenaltyFee != nil {
		penalty = *in.PenaltyFee
	}

	previous := *current
	updated = &domain.Rental{}
	*updated = *current
	updated.ActualReturnDate = &returnDate
	updated.PenaltyFee = penalty

	restoreUnits := func(ctx context.Context, ids []int32) error {
		var firstErr error
		for _, id := range ids {
			cond, ok := previousCondition[id]
			if !ok {
				cond = domain.EquipmentConditionGood
			}
			if err := s.equipmentRepo.SetCondition(ctx, id, cond, domain.EquipmentStatusRented); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	var released []int32
	err = newSaga("return_rental").
		AddStep(saga.Step{
			Name: "update_header",
			Action: func(ctx context.Context) error {
				return s.rentalRepo.Update(ctx, updated)
			},
			Compensate: func(ctx context.Context) error {
				return s.rentalRepo.Update(ctx, &previous)
			},
		}).
		AddStep(saga.Step{
			Name: "release_good_units",
			Action: func(ctx context.Context) error {
				var err error
				released, err = releaseUnits(ctx, s.equipmentRepo, good)
				return err
			},
			Compensate: func(ctx context.Context) error {
				return reserveUnits(ctx, s.equipmentRepo, released)
			},
		}).
		AddStep(saga.Step{
			Name: "flag_damaged_units",
			Action: func(ctx context.Context) error {
				for i, id := range damaged {
					if err := s.equipmentRepo.SetCondition(ctx, id, conditions[id], domain.EquipmentStatusMaintenance); err != nil {
						if rbErr := restoreUnits(context.WithoutCancel(ctx), damaged[:i]); rbErr != nil {
							logger.ErrorContext(ctx, "Failed to restore flagged equipment", "rentalID", rentalID, "error", rbErr)
						}
						return err
					}
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return restoreUnits(ctx, damaged)
			},
		}).
		Execute(ctx)
	if err != nil {
		return nil, err
	}

	for i := range details {
		if details[i].Equipment == nil {
			continue
		}
		details[i].Equipment.Condition = conditions[details[i].EquipmentID]
		if details[i].Equipment.Condition == domain.EquipmentConditionGood {
			details[i].Equipment.Status = domain.EquipmentStatusAvailable
		} else {
			details[i].Equipment.Status = domain.EquipmentStatusMaintenance
		}
	}
	updated.Details = details

	logger.Info("Rental returned", "rentalID", rentalID, "operatorID", op.ID, "penalty", penalty.String(), "damaged", len(damaged))
	return updated, nil
}

func (s *rentalService) DeleteRental(ctx context.Context, op domain.Operator, rentalID int32) (err error) {
	logger.EnterMethod("rentalService.DeleteRental", "operatorID", op.ID, "rentalID", rentalID)
	defer func() {
		recordOutcome("delete_rental", err)
		if err != nil {
			logger.ExitMethodWithError("rentalService.DeleteRental", err, "rentalID", rentalID)
		}
	}()

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return err
	}

	payments, err := s.paymentRepo.ListByRental(ctx, rentalID)
	if err != nil {
		return err
	}
	if len(payments) > 0 {
		return domain.NewConflictError(fmt.Sprintf("rental %d has %d payment(s); delete them first", rentalID, len(payments)))
	}

	// A returned or reopened rental no longer holds its units; some of them may
	// be out on another rental by now.
	sg := newSaga("delete_rental")
	if rental.HoldsEquipment() {
		details, err := s.rentalRepo.ListDetails(ctx, rentalID)
		if err != nil {
			return err
		}
		ids := equipmentIDs(details)
		var released []int32
		sg.AddStep(saga.Step{
			Name: "release_equipment",
			Action: func(ctx context.Context) error {
				var err error
				released, err = releaseUnits(ctx, s.equipmentRepo, ids)
				return err
			},
			Compensate: func(ctx context.Context) error {
				return reserveUnits(ctx, s.equipmentRepo, released)
			},
		})
	}
	sg.AddStep(saga.Step{
		Name: "delete_rental",
		Action: func(ctx context.Context) error {
			return s.rentalRepo.Delete(ctx, rentalID)
		},
	})

	if err := sg.Execute(ctx); err != nil {
		return err
	}

	logger.Info("Rental deleted", "rentalID", rentalID, "operatorID", op.ID, "status", rental.Status)
	return nil
}

func (s *rentalService) GetRental(ctx context.Context, rentalID int32) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	details, err := s.rentalRepo.ListDetails(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	rental.Details = details
	return rental, nil
}

func (s *rentalService) ListRentals(ctx context.Context, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.rentalRepo.List(ctx, status, page, pageSize)
}

// DraftItem is one unit of a quote request with the raw day input.
type DraftItem struct {
	EquipmentID int32
	Days        string
}

// Quote prices a selection without persisting anything.
type Quote struct {
	Lines        []DraftLine     `json:"lines"`
	RentalTotal  decimal.Decimal `json:"rental_total"`
	DepositTotal decimal.Decimal `json:"deposit_total"`
	Unavailable  []int32         `json:"unavailable,omitempty"`
}

func (s *rentalService) QuoteRental(ctx context.Context, items []DraftItem) (*Quote, error) {
	if len(items) == 0 {
		return nil, domain.NewInvalidArgumentError("Please add at least one equipment")
	}

	pool := make([]domain.Equipment, 0, len(items))
	loaded := make(map[int32]bool, len(items))
	for _, item := range items {
		if loaded[item.EquipmentID] {
			continue
		}
		unit, err := s.equipmentRepo.GetByID(ctx, item.EquipmentID)
		if err != nil {
			return nil, err
		}
		loaded[unit.ID] = true
		pool = append(pool, *unit)
	}

	draft := NewRentalDraft(pool)
	for _, item := range items {
		if err := draft.Add(item.EquipmentID); err != nil {
			return nil, err
		}
		if err := draft.SetDays(item.EquipmentID, item.Days); err != nil {
			return nil, err
		}
	}

	totals := draft.Totals()
	quote := &Quote{Lines: draft.Lines(), RentalTotal: totals.RentalTotal, DepositTotal: totals.DepositTotal}
	for _, unit := range pool {
		if unit.Status != domain.EquipmentStatusAvailable {
			quote.Unavailable = append(quote.Unavailable, unit.ID)
		}
	}
	return quote, nil
}
