package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/instantin-me/commerce-core/internal/drop"
)

type DropHandler struct {
	svc drop.Service
}

func NewDropHandler(svc drop.Service) *DropHandler {
	return &DropHandler{svc: svc}
}

func (h *DropHandler) CreateDrop(w http.ResponseWriter, r *http.Request) {
	var d drop.Drop
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.svc.CreateDrop(r.Context(), &d)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *DropHandler) GetDropByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	d, err := h.svc.GetDropByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, d)
}

// ComputeRevenueSplit previews the split for an arbitrary revenue figure
// without persisting anything.
func (h *DropHandler) ComputeRevenueSplit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var body struct {
		TotalRevenue decimal.Decimal `json:"total_revenue"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.svc.ComputeRevenueSplit(r.Context(), id, body.TotalRevenue)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// DistributeRevenue splits the drop's accumulated sales and persists
// participant commissions.
func (h *DropHandler) DistributeRevenue(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	result, err := h.svc.DistributeRevenue(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *DropHandler) JoinDrop(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var body struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.svc.JoinDrop(r.Context(), id, body.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, p)
}

func (h *DropHandler) ScheduleDrop(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var body struct {
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d, err := h.svc.ScheduleDrop(r.Context(), id, body.StartDate, body.EndDate)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, d)
}

func (h *DropHandler) StartDrop(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	d, err := h.svc.StartDrop(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, d)
}

func (h *DropHandler) PauseDrop(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	d, err := h.svc.PauseDrop(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, d)
}

func (h *DropHandler) ResumeDrop(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	d, err := h.svc.ResumeDrop(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, d)
}

func (h *DropHandler) EndDrop(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	d, err := h.svc.EndDrop(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, d)
}

func (h *DropHandler) CancelDrop(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	d, err := h.svc.CancelDrop(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, d)
}
