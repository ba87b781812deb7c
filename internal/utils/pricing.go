package utils

import (
	"fmt"
	"time"

	"camera-rental-backend/internal/domain"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// LinePrice is the priced form of one equipment line.
type LinePrice struct {
	EquipmentID     int32
	Days            int32
	Subtotal        decimal.Decimal
	RequiredDeposit decimal.Decimal
}

// RentalTotals sums a rental's lines. Deposit is informational and not part of
// the rental's total_amount.
type RentalTotals struct {
	RentalTotal  decimal.Decimal `json:"rental_total"`
	DepositTotal decimal.Decimal `json:"deposit_total"`
}

// ParseDate converts a yyyy-mm-dd string into a UTC date.
func ParseDate(dateStr string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}
	return d, nil
}

// Truncate drops the time of day, keeping the calendar date in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InclusiveDays counts calendar days from start to end with both ends included.
func InclusiveDays(start, end time.Time) int32 {
	days := int32(Truncate(end).Sub(Truncate(start)).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// LateDays is how many days past end the equipment came back; never negative.
func LateDays(end, returned time.Time) int32 {
	days := int32(Truncate(returned).Sub(Truncate(end)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// PriceLine multiplies the type's daily rate and deposit by the number of days.
func PriceLine(et *domain.EquipmentType, equipmentID, days int32) LinePrice {
	qty := decimal.NewFromInt32(days)
	return LinePrice{
		EquipmentID:     equipmentID,
		Days:            days,
		Subtotal:        et.Rate.Mul(qty),
		RequiredDeposit: et.DepositAmount.Mul(qty),
	}
}

// SumLines recomputes totals from priced lines.
func SumLines(lines []LinePrice) RentalTotals {
	totals := RentalTotals{RentalTotal: decimal.Zero, DepositTotal: decimal.Zero}
	for _, l := range lines {
		totals.RentalTotal = totals.RentalTotal.Add(l.Subtotal)
		totals.DepositTotal = totals.DepositTotal.Add(l.RequiredDeposit)
	}
	return totals
}

// SumDetails recomputes totals from stored rental details.
func SumDetails(details []domain.RentalDetail) RentalTotals {
	totals := RentalTotals{RentalTotal: decimal.Zero, DepositTotal: decimal.Zero}
	for _, d := range details {
		totals.RentalTotal = totals.RentalTotal.Add(d.Subtotal)
		totals.DepositTotal = totals.DepositTotal.Add(d.RequiredDeposit)
	}
	return totals
}

// DefaultPenalty charges one day of every line's rate per late day.
func DefaultPenalty(details []domain.RentalDetail, end, returned time.Time) decimal.Decimal {
	late := LateDays(end, returned)
	if late == 0 {
		return decimal.Zero
	}
	daily := decimal.Zero
	for _, d := range details {
		if d.Equipment != nil && d.Equipment.Type != nil {
			daily = daily.Add(d.Equipment.Type.Rate)
		} else if d.TimeQuantity > 0 {
			daily = daily.Add(d.Subtotal.Div(decimal.NewFromInt32(d.TimeQuantity)))
		}
	}
	return daily.Mul(decimal.NewFromInt32(late))
}
