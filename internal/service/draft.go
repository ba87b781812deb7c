package service

import (
	"fmt"
	"strconv"
	"strings"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/utils"

	"github.com/shopspring/decimal"
)

// DraftLine is a unit in the draft with its priced amounts.
type DraftLine struct {
	Equipment       domain.Equipment `json:"equipment"`
	Days            int32            `json:"days"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	RequiredDeposit decimal.Decimal  `json:"required_deposit"`
}

// RentalDraft is the in-progress selection of an operator building a rental.
// Units move between the pool and the draft; a unit is never in both. It is
// not safe for concurrent use.
type RentalDraft struct {
	pool     []domain.Equipment
	selected []int32
	days     map[int32]int32
}

func NewRentalDraft(pool []domain.Equipment) *RentalDraft {
	return &RentalDraft{
		pool: append([]domain.Equipment(nil), pool...),
		days: make(map[int32]int32),
	}
}

func (d *RentalDraft) contains(id int32) bool {
	_, ok := d.days[id]
	return ok
}

func (d *RentalDraft) unit(id int32) (domain.Equipment, bool) {
	for _, e := range d.pool {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Equipment{}, false
}

// Add moves a unit from the pool into the draft with one day.
func (d *RentalDraft) Add(equipmentID int32) error {
	if d.contains(equipmentID) {
		return domain.NewInvalidArgumentError("This equipment is already added")
	}
	if _, ok := d.unit(equipmentID); !ok {
		return domain.NewNotFoundError(fmt.Sprintf("equipment %d is not in the selection pool", equipmentID))
	}
	d.selected = append(d.selected, equipmentID)
	d.days[equipmentID] = 1
	return nil
}

// Remove puts a unit back into the pool. It reports whether the unit was in the draft.
func (d *RentalDraft) Remove(equipmentID int32) bool {
	if !d.contains(equipmentID) {
		return false
	}
	delete(d.days, equipmentID)
	for i, id := range d.selected {
		if id == equipmentID {
			d.selected = append(d.selected[:i], d.selected[i+1:]...)
			break
		}
	}
	return true
}

// SetDays parses raw operator input. Anything that is not a whole number of at
// least one day becomes one day.
func (d *RentalDraft) SetDays(equipmentID int32, raw string) error {
	if !d.contains(equipmentID) {
		return domain.NewNotFoundError(fmt.Sprintf("equipment %d is not in the draft", equipmentID))
	}
	d.days[equipmentID] = ClampDays(raw)
	return nil
}

// ClampDays turns free-form day input into a day count of at least one.
func ClampDays(raw string) int32 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil || n < 1 {
		return 1
	}
	return int32(n)
}

// Available lists the pool units not yet in the draft.
func (d *RentalDraft) Available() []domain.Equipment {
	out := make([]domain.Equipment, 0, len(d.pool))
	for _, e := range d.pool {
		if !d.contains(e.ID) {
			out = append(out, e)
		}
	}
	return out
}

// Lines prices every selected unit in selection order.
func (d *RentalDraft) Lines() []DraftLine {
	lines := make([]DraftLine, 0, len(d.selected))
	for _, id := range d.selected {
		e, _ := d.unit(id)
		line := DraftLine{Equipment: e, Days: d.days[id], Subtotal: decimal.Zero, RequiredDeposit: decimal.Zero}
		if e.Type != nil {
			price := utils.PriceLine(e.Type, id, line.Days)
			line.Subtotal = price.Subtotal
			line.RequiredDeposit = price.RequiredDeposit
		}
		lines = append(lines, line)
	}
	return lines
}

func (d *RentalDraft) Totals() utils.RentalTotals {
	lines := d.Lines()
	prices := make([]utils.LinePrice, len(lines))
	for i, l := range lines {
		prices[i] = utils.LinePrice{EquipmentID: l.Equipment.ID, Days: l.Days, Subtotal: l.Subtotal, RequiredDeposit: l.RequiredDeposit}
	}
	return utils.SumLines(prices)
}

// Items is the line-item input for creating or editing a rental.
func (d *RentalDraft) Items() []domain.LineItem {
	items := make([]domain.LineItem, len(d.selected))
	for i, id := range d.selected {
		items[i] = domain.LineItem{EquipmentID: id, Days: d.days[id]}
	}
	return items
}
