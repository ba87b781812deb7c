package http

import (
	"fmt"
	"net/http"

	"camera-rental-backend/internal/service"
)

type RentalHandler struct {
	rentals  service.RentalService
	payments service.PaymentService
}

func NewRentalHandler(rentals service.RentalService, payments service.PaymentService) *RentalHandler {
	return &RentalHandler{rentals: rentals, payments: payments}
}

func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt32(r, "page", 1)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageSize, err := queryInt32(r, "page_size", 20)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rentals, total, err := h.rentals.ListRentals(r.Context(), r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[*rentalResponse]{Items: toRentals(rentals), Total: total, Page: page})
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.rentals.GetRental(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRental(rental))
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	op, _ := OperatorFromContext(r.Context())
	var req rentalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.rentals.CreateRental(r.Context(), op, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/rentals/%d", rental.ID))
	writeJSON(w, http.StatusCreated, toRental(rental))
}

func (h *RentalHandler) Update(w http.ResponseWriter, r *http.Request) {
	op, _ := OperatorFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req rentalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.rentals.UpdateRental(r.Context(), op, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRental(rental))
}

func (h *RentalHandler) Return(w http.ResponseWriter, r *http.Request) {
	op, _ := OperatorFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req returnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.rentals.ReturnRental(r.Context(), op, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRental(rental))
}

func (h *RentalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	op, _ := OperatorFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.rentals.DeleteRental(r.Context(), op, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RentalHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	quote, err := h.rentals.QuoteRental(r.Context(), req.toItems())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *RentalHandler) PaymentDefaults(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defaults, err := h.payments.PaymentDefaults(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, defaults)
}
