package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EquipmentStatus string

const (
	EquipmentStatusAvailable   EquipmentStatus = "Available"
	EquipmentStatusRented      EquipmentStatus = "Rented"
	EquipmentStatusMaintenance EquipmentStatus = "Maintenance"
)

type EquipmentCondition string

const (
	EquipmentConditionGood    EquipmentCondition = "Good"
	EquipmentConditionDamaged EquipmentCondition = "Damaged"
	EquipmentConditionLost    EquipmentCondition = "Lost"
)

func (c EquipmentCondition) Valid() bool {
	switch c {
	case EquipmentConditionGood, EquipmentConditionDamaged, EquipmentConditionLost:
		return true
	}
	return false
}

type EquipmentType struct {
	ID            int32           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Rate          decimal.Decimal `json:"rate"`           // per day
	DepositAmount decimal.Decimal `json:"deposit_amount"` // per day
	CreatedOn     time.Time       `json:"created_on"`
}

type Equipment struct {
	ID           int32              `json:"id"`
	TypeID       int32              `json:"type_id"`
	Type         *EquipmentType     `json:"type,omitempty"` // Populated when fetching equipment details
	SerialNumber string             `json:"serial_number"`
	PurchaseDate *time.Time         `json:"purchase_date,omitempty"`
	Condition    EquipmentCondition `json:"condition"`
	Status       EquipmentStatus    `json:"status"`
	Notes        string             `json:"notes"`
	CreatedOn    time.Time          `json:"created_on"`
}
