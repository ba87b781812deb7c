package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	RentalStatusActive    RentalStatus = "Active"
	RentalStatusCompleted RentalStatus = "Completed"
	RentalStatusOverdue   RentalStatus = "Overdue"
)

// OpenRentalStatuses are the statuses in which a rental still holds its equipment.
var OpenRentalStatuses = []RentalStatus{RentalStatusActive, RentalStatusOverdue}

func (s RentalStatus) IsOpen() bool {
	return s == RentalStatusActive || s == RentalStatusOverdue
}

type Rental struct {
	ID                int32           `json:"id"`
	CustomerID        int32           `json:"customer_id"`
	Customer          *Customer       `json:"customer,omitempty"` // Populated when fetching rental details
	StartDate         time.Time       `json:"start_date"`
	EndDate           time.Time       `json:"end_date"`
	Status            RentalStatus    `json:"status"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	ProcessedBy       int32           `json:"processed_by"`
	ActualReturnDate  *time.Time      `json:"actual_return_date,omitempty"`
	PenaltyFee        decimal.Decimal `json:"penalty_fee"`
	// EquipmentReleased is set when the rental was reopened after a payment had
	// already released its units.
	EquipmentReleased bool            `json:"equipment_released"`
	Notes             string          `json:"notes"`
	Details           []RentalDetail  `json:"details,omitempty"`
	CreatedOn         time.Time       `json:"created_on"`
	UpdatedOn         time.Time       `json:"updated_on"`
}

// HoldsEquipment reports whether the rental's units are still out with the
// customer: the rental is open, not returned and not reopened after a payment.
func (r *Rental) HoldsEquipment() bool {
	return r.Status.IsOpen() && r.ActualReturnDate == nil && !r.EquipmentReleased
}

// RentalDetail is one equipment unit attached to a rental.
type RentalDetail struct {
	ID              int32           `json:"id"`
	RentalID        int32           `json:"rental_id"`
	EquipmentID     int32           `json:"equipment_id"`
	Equipment       *Equipment      `json:"equipment,omitempty"`
	TimeQuantity    int32           `json:"time_quantity"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	RequiredDeposit decimal.Decimal `json:"required_deposit"`
}

// LineItem is an equipment selection as submitted by the operator.
type LineItem struct {
	EquipmentID int32 `json:"equipment_id"`
	Days        int32 `json:"days"`
}

// RentalInput carries the header fields and line items of a create or edit request.
type RentalInput struct {
	CustomerID int32
	StartDate  time.Time
	EndDate    time.Time
	Notes      string
	Items      []LineItem
}

// ConditionReport records the state of one unit handed back on return.
type ConditionReport struct {
	EquipmentID int32              `json:"equipment_id"`
	Condition   EquipmentCondition `json:"condition"`
}

type ReturnInput struct {
	ReturnDate time.Time
	PenaltyFee *decimal.Decimal
	Conditions []ConditionReport
}
