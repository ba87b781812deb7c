package http

import (
	"fmt"
	"net/http"
	"strconv"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/logger"
	"camera-rental-backend/internal/service"
)

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
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
	payments, total, err := h.svc.ListPayments(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[*paymentResponse]{Items: toPayments(payments), Total: total, Page: page})
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	payment, err := h.svc.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayment(payment))
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	op, _ := OperatorFromContext(r.Context())
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	payment, err := h.svc.RecordPayment(r.Context(), op, domain.PaymentInput{
		RentalID:       req.RentalID,
		DepositPayment: req.DepositPayment,
		RentalPayment:  req.RentalPayment,
		PaymentMethod:  req.PaymentMethod,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/payments/%d", payment.ID))
	writeJSON(w, http.StatusCreated, toPayment(payment))
}

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	op, _ := OperatorFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.DeletePayment(r.Context(), op, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PaymentHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pdf, payment, err := h.svc.RenderReceipt(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="receipt-%s.pdf"`, payment.ReceiptNumber))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		logger.WarnContext(r.Context(), "Failed to stream receipt", "paymentID", id, "error", err)
	}
}
