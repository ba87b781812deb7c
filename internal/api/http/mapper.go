package http

import (
	"encoding/json"
	"strings"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/service"
	"camera-rental-backend/internal/utils"

	"github.com/shopspring/decimal"
)

type customerResponse struct {
	*domain.Customer
	StatusBadge domain.Badge `json:"status_badge"`
}

type equipmentResponse struct {
	*domain.Equipment
	StatusBadge    domain.Badge `json:"status_badge"`
	ConditionBadge domain.Badge `json:"condition_badge"`
}

type rentalDetailResponse struct {
	domain.RentalDetail
	Equipment *equipmentResponse `json:"equipment,omitempty"`
}

type rentalResponse struct {
	*domain.Rental
	StatusBadge  domain.Badge           `json:"status_badge"`
	DepositTotal decimal.Decimal        `json:"deposit_total"`
	Customer     *customerResponse      `json:"customer,omitempty"`
	Details      []rentalDetailResponse `json:"details,omitempty"`
}

type paymentResponse struct {
	*domain.Payment
	Total  decimal.Decimal `json:"total"`
	Rental *rentalResponse `json:"rental,omitempty"`
}

func toCustomer(c *domain.Customer) *customerResponse {
	if c == nil {
		return nil
	}
	return &customerResponse{Customer: c, StatusBadge: domain.BadgeFor(string(c.Status))}
}

func toCustomers(in []domain.Customer) []*customerResponse {
	out := make([]*customerResponse, len(in))
	for i := range in {
		out[i] = toCustomer(&in[i])
	}
	return out
}

func toEquipment(e *domain.Equipment) *equipmentResponse {
	if e == nil {
		return nil
	}
	return &equipmentResponse{
		Equipment:      e,
		StatusBadge:    domain.BadgeFor(string(e.Status)),
		ConditionBadge: domain.BadgeFor(string(e.Condition)),
	}
}

func toEquipmentList(in []domain.Equipment) []*equipmentResponse {
	out := make([]*equipmentResponse, len(in))
	for i := range in {
		out[i] = toEquipment(&in[i])
	}
	return out
}

func toRental(r *domain.Rental) *rentalResponse {
	if r == nil {
		return nil
	}
	resp := &rentalResponse{
		Rental:      r,
		StatusBadge: domain.BadgeFor(string(r.Status)),
		Customer:    toCustomer(r.Customer),
	}
	if len(r.Details) > 0 {
		resp.DepositTotal = utils.SumDetails(r.Details).DepositTotal
		resp.Details = make([]rentalDetailResponse, len(r.Details))
		for i, d := range r.Details {
			resp.Details[i] = rentalDetailResponse{RentalDetail: d, Equipment: toEquipment(d.Equipment)}
		}
	}
	return resp
}

func toRentals(in []domain.Rental) []*rentalResponse {
	out := make([]*rentalResponse, len(in))
	for i := range in {
		out[i] = toRental(&in[i])
	}
	return out
}

func toPayment(p *domain.Payment) *paymentResponse {
	if p == nil {
		return nil
	}
	return &paymentResponse{Payment: p, Total: p.Total(), Rental: toRental(p.Rental)}
}

func toPayments(in []domain.Payment) []*paymentResponse {
	out := make([]*paymentResponse, len(in))
	for i := range in {
		out[i] = toPayment(&in[i])
	}
	return out
}

type rentalRequest struct {
	CustomerID int32             `json:"customer_id"`
	StartDate  string            `json:"start_date"`
	EndDate    string            `json:"end_date"`
	Notes      string            `json:"notes"`
	Items      []domain.LineItem `json:"items"`
}

func (req rentalRequest) toInput() (domain.RentalInput, error) {
	in := domain.RentalInput{CustomerID: req.CustomerID, Notes: strings.TrimSpace(req.Notes), Items: req.Items}
	if req.StartDate == "" || req.EndDate == "" {
		return in, domain.NewInvalidArgumentError("Please select rental dates")
	}
	var err error
	if in.StartDate, err = utils.ParseDate(req.StartDate); err != nil {
		return in, domain.NewInvalidArgumentError("invalid start_date: " + req.StartDate)
	}
	if in.EndDate, err = utils.ParseDate(req.EndDate); err != nil {
		return in, domain.NewInvalidArgumentError("invalid end_date: " + req.EndDate)
	}
	return in, nil
}

type returnRequest struct {
	ReturnDate string                   `json:"return_date"`
	PenaltyFee *decimal.Decimal         `json:"penalty_fee"`
	Conditions []domain.ConditionReport `json:"conditions"`
}

func (req returnRequest) toInput() (domain.ReturnInput, error) {
	in := domain.ReturnInput{PenaltyFee: req.PenaltyFee, Conditions: req.Conditions}
	if req.ReturnDate != "" {
		d, err := utils.ParseDate(req.ReturnDate)
		if err != nil {
			return in, domain.NewInvalidArgumentError("invalid return_date: " + req.ReturnDate)
		}
		in.ReturnDate = d
	}
	return in, nil
}

type paymentRequest struct {
	RentalID       int32                `json:"rental_id"`
	DepositPayment *decimal.Decimal     `json:"deposit_payment"`
	RentalPayment  *decimal.Decimal     `json:"rental_payment"`
	PaymentMethod  domain.PaymentMethod `json:"payment_method"`
}

// rawDays accepts the day count either as a JSON number or as free text.
type rawDays string

func (d *rawDays) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = rawDays(s)
		return nil
	}
	*d = rawDays(strings.TrimSpace(string(b)))
	return nil
}

type quoteRequest struct {
	Items []struct {
		EquipmentID int32   `json:"equipment_id"`
		Days        rawDays `json:"days"`
	} `json:"items"`
}

func (req quoteRequest) toItems() []service.DraftItem {
	items := make([]service.DraftItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.DraftItem{EquipmentID: it.EquipmentID, Days: string(it.Days)}
	}
	return items
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signupRequest struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	FullName string          `json:"full_name"`
	Email    string          `json:"email"`
	Role     domain.UserRole `json:"role"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}
