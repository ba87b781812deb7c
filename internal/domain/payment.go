package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "Cash"
	PaymentMethodTransfer PaymentMethod = "Transfer"
	PaymentMethodQRIS     PaymentMethod = "QRIS"
	PaymentMethodCard     PaymentMethod = "Card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodQRIS, PaymentMethodCard:
		return true
	}
	return false
}

type Payment struct {
	ID             int32           `json:"id"`
	RentalID       int32           `json:"rental_id"`
	Rental         *Rental         `json:"rental,omitempty"` // Populated when fetching payment details
	ReceiptNumber  string          `json:"receipt_number"`
	DepositPayment decimal.Decimal `json:"deposit_payment"`
	RentalPayment  decimal.Decimal `json:"rental_payment"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	PaymentDate    time.Time       `json:"payment_date"`
	ProcessedBy    int32           `json:"processed_by"`
}

// Total is the amount of money received.
func (p *Payment) Total() decimal.Decimal {
	return p.DepositPayment.Add(p.RentalPayment)
}

// PaymentDefaults are the amounts a settling payment is pre-filled with.
type PaymentDefaults struct {
	RentalID       int32           `json:"rental_id"`
	RentalPayment  decimal.Decimal `json:"rental_payment"`
	DepositPayment decimal.Decimal `json:"deposit_payment"`
}

type PaymentInput struct {
	RentalID       int32
	DepositPayment *decimal.Decimal
	RentalPayment  *decimal.Decimal
	PaymentMethod  PaymentMethod
}
