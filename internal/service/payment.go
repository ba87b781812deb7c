package service

import (
	"context"
	"fmt"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/logger"
	"camera-rental-backend/internal/repository"
	"camera-rental-backend/internal/saga"
	"camera-rental-backend/internal/utils"
)

type paymentService struct {
	rentalRepo    repository.RentalRepository
	equipmentRepo repository.EquipmentRepository
	paymentRepo   repository.PaymentRepository
	receipts      ReceiptRenderer
	notifier      Notifier
	clock         Clock
	ids           IDGenerator
}

func NewPaymentService(
	rentalRepo repository.RentalRepository,
	equipmentRepo repository.EquipmentRepository,
	paymentRepo repository.PaymentRepository,
	receipts ReceiptRenderer,
	notifier Notifier,
	clock Clock,
	ids IDGenerator,
) PaymentService {
	return &paymentService{
		rentalRepo:    rentalRepo,
		equipmentRepo: equipmentRepo,
		paymentRepo:   paymentRepo,
		receipts:      receipts,
		notifier:      notifier,
		clock:         clock,
		ids:           ids,
	}
}

func (s *paymentService) PaymentDefaults(ctx context.Context, rentalID int32) (*domain.PaymentDefaults, error) {
	if _, err := s.rentalRepo.GetByID(ctx, rentalID); err != nil {
		return nil, err
	}
	details, err := s.rentalRepo.ListDetails(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	totals := utils.SumDetails(details)
	return &domain.PaymentDefaults{
		RentalID:       rentalID,
		RentalPayment:  totals.RentalTotal,
		DepositPayment: totals.DepositTotal,
	}, nil
}

func (s *paymentService) RecordPayment(ctx context.Context, op domain.Operator, in domain.PaymentInput) (payment *domain.Payment, err error) {
	logger.EnterMethod("paymentService.RecordPayment", "operatorID", op.ID, "rentalID", in.RentalID)
	defer func() {
		recordOutcome("record_payment", err)
		if err != nil {
			logger.ExitMethodWithError("paymentService.RecordPayment", err, "rentalID", in.RentalID)
		}
	}()

	if in.RentalID <= 0 {
		return nil, domain.NewInvalidArgumentError("rental id is required")
	}
	method := in.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodCash
	}
	if !method.Valid() {
		return nil, domain.NewInvalidArgumentError(fmt.Sprintf("unknown payment method %q", in.PaymentMethod))
	}
	if in.DepositPayment != nil && in.DepositPayment.IsNegative() {
		return nil, domain.NewInvalidArgumentError("deposit payment cannot be negative")
	}
	if in.RentalPayment != nil && in.RentalPayment.IsNegative() {
		return nil, domain.NewInvalidArgumentError("rental payment cannot be negative")
	}

	rental, err := s.rentalRepo.GetByID(ctx, in.RentalID)
	if err != nil {
		return nil, err
	}
	if !rental.Status.IsOpen() {
		return nil, domain.NewConflictError(fmt.Sprintf("rental %d is already %s", rental.ID, rental.Status))
	}

	details, err := s.rentalRepo.ListDetails(ctx, rental.ID)
	if err != nil {
		return nil, err
	}
	totals := utils.SumDetails(details)

	payment = &domain.Payment{
		RentalID:       rental.ID,
		ReceiptNumber:  s.ids.NewID(),
		DepositPayment: totals.DepositTotal,
		RentalPayment:  totals.RentalTotal,
		PaymentMethod:  method,
		PaymentDate:    s.clock.Now(),
		ProcessedBy:    op.ID,
	}
	if in.DepositPayment != nil {
		payment.DepositPayment = *in.DepositPayment
	}
	if in.RentalPayment != nil {
		payment.RentalPayment = *in.RentalPayment
	}

	ids := equipmentIDs(details)
	previousStatus := rental.Status
	var released []int32

	sg := newSaga("record_payment").
		AddStep(saga.Step{
			Name: "insert_payment",
			Action: func(ctx context.Context) error {
				return s.paymentRepo.Create(ctx, payment)
			},
			Compensate: func(ctx context.Context) error {
				return s.paymentRepo.Delete(ctx, payment.ID)
			},
		}).
		AddStep(saga.Step{
			Name: "complete_rental",
			Action: func(ctx context.Context) error {
				return s.rentalRepo.TransitionStatus(ctx, rental.ID, domain.OpenRentalStatuses, domain.RentalStatusCompleted)
			},
			Compensate: func(ctx context.Context) error {
				return s.rentalRepo.TransitionStatus(ctx, rental.ID, []domain.RentalStatus{domain.RentalStatusCompleted}, previousStatus)
			},
		})
	// The return (or an earlier payment) already handled the units of a rental
	// that no longer holds them.
	if rental.HoldsEquipment() {
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
	if err = sg.Execute(ctx); err != nil {
		return nil, err
	}

	rental.Status = domain.RentalStatusCompleted
	rental.Details = details
	payment.Rental = rental

	logger.Info("Payment recorded", "paymentID", payment.ID, "rentalID", rental.ID, "receipt", payment.ReceiptNumber, "total", payment.Total().String(), "released", len(released))

	receipt, rerr := s.receipts.Render(payment, details)
	if rerr != nil {
		logger.ErrorContext(ctx, "Failed to render receipt", "paymentID", payment.ID, "error", rerr)
		receipt = nil
	}
	if rental.Customer != nil {
		s.notifier.PaymentRecorded(ctx, payment, rental.Customer, receipt)
	}
	return payment, nil
}

// DeletePayment removes a payment and reopens its rental. Equipment released by
// the payment is not reserved again and the reopened rental is marked as no
// longer holding it.
func (s *paymentService) DeletePayment(ctx context.Context, op domain.Operator, paymentID int32) (err error) {
	logger.EnterMethod("paymentService.DeletePayment", "operatorID", op.ID, "paymentID", paymentID)
	defer func() {
		recordOutcome("delete_payment", err)
		if err != nil {
			logger.ExitMethodWithError("paymentService.DeletePayment", err, "paymentID", paymentID)
		}
	}()

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	rental, err := s.rentalRepo.GetByID(ctx, payment.RentalID)
	if err != nil {
		return err
	}

	sg := newSaga("delete_payment")
	if rental.Status == domain.RentalStatusCompleted {
		sg.AddStep(saga.Step{
			Name: "reopen_rental",
			Action: func(ctx context.Context) error {
				return s.rentalRepo.Reopen(ctx, rental.ID)
			},
			Compensate: func(ctx context.Context) error {
				return s.rentalRepo.TransitionStatus(ctx, rental.ID, []domain.RentalStatus{domain.RentalStatusActive}, domain.RentalStatusCompleted)
			},
		})
	}
	sg.AddStep(saga.Step{
		Name: "delete_payment",
		Action: func(ctx context.Context) error {
			return s.paymentRepo.Delete(ctx, paymentID)
		},
	})
	if err := sg.Execute(ctx); err != nil {
		return err
	}

	logger.Info("Payment deleted", "paymentID", paymentID, "rentalID", rental.ID, "operatorID", op.ID)
	return nil
}

func (s *paymentService) GetPayment(ctx context.Context, paymentID int32) (*domain.Payment, error) {
	return s.paymentRepo.GetByID(ctx, paymentID)
}

func (s *paymentService) ListPayments(ctx context.Context, page, pageSize int32) ([]domain.Payment, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.paymentRepo.List(ctx, page, pageSize)
}

func (s *paymentService) RenderReceipt(ctx context.Context, paymentID int32) ([]byte, *domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	details, err := s.rentalRepo.ListDetails(ctx, payment.RentalID)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.receipts.Render(payment, details)
	if err != nil {
		return nil, nil, fmt.Errorf("render receipt %s: %w", payment.ReceiptNumber, err)
	}
	return pdf, payment, nil
}
