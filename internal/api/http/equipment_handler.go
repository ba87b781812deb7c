package http

import (
	"fmt"
	"net/http"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/service"
)

type EquipmentHandler struct {
	svc service.EquipmentService
}

func NewEquipmentHandler(svc service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{svc: svc}
}

func (h *EquipmentHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.ListTypes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.EquipmentType]{Items: types})
}

func (h *EquipmentHandler) GetType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	et, err := h.svc.GetType(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, et)
}

func (h *EquipmentHandler) CreateType(w http.ResponseWriter, r *http.Request) {
	var et domain.EquipmentType
	if err := decodeJSON(r, &et); err != nil {
		writeError(w, r, err)
		return
	}
	et.ID = 0
	if err := h.svc.CreateType(r.Context(), &et); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/equipment-types/%d", et.ID))
	writeJSON(w, http.StatusCreated, et)
}

func (h *EquipmentHandler) UpdateType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var et domain.EquipmentType
	if err := decodeJSON(r, &et); err != nil {
		writeError(w, r, err)
		return
	}
	et.ID = id
	if err := h.svc.UpdateType(r.Context(), &et); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, et)
}

func (h *EquipmentHandler) DeleteType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteType(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	units, err := h.svc.ListEquipment(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[*equipmentResponse]{Items: toEquipmentList(units)})
}

func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	unit, err := h.svc.GetEquipment(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEquipment(unit))
}

func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var unit domain.Equipment
	if err := decodeJSON(r, &unit); err != nil {
		writeError(w, r, err)
		return
	}
	unit.ID = 0
	if err := h.svc.CreateEquipment(r.Context(), &unit); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/equipment/%d", unit.ID))
	writeJSON(w, http.StatusCreated, toEquipment(&unit))
}

func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var unit domain.Equipment
	if err := decodeJSON(r, &unit); err != nil {
		writeError(w, r, err)
		return
	}
	unit.ID = id
	if err := h.svc.UpdateEquipment(r.Context(), &unit); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEquipment(&unit))
}

func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteEquipment(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
