package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"

	"github.com/instantin-me/commerce-core/internal/raffle"
)

type RaffleHandler struct {
	svc raffle.Service
}

func NewRaffleHandler(svc raffle.Service) *RaffleHandler {
	return &RaffleHandler{svc: svc}
}

func (h *RaffleHandler) CreateRaffle(w http.ResponseWriter, r *http.Request) {
	var ra raffle.Raffle
	if err := json.NewDecoder(r.Body).Decode(&ra); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.svc.CreateRaffle(r.Context(), &ra)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *RaffleHandler) GetRaffleByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	ra, err := h.svc.GetRaffleByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ra)
}

func (h *RaffleHandler) EnterRaffle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var input raffle.EnterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := h.svc.EnterRaffle(r.Context(), id, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, entry)
}

func (h *RaffleHandler) ComputePrizeBreakdown(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	prizes, err := h.svc.ComputePrizeBreakdown(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, prizes)
}

func (h *RaffleHandler) DrawWinners(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var body struct {
		Seed uint64 `json:"seed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	winners, err := h.svc.DrawWinners(r.Context(), id, body.Seed)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, winners)
}

func (h *RaffleHandler) LaunchRaffle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	ra, err := h.svc.LaunchRaffle(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ra)
}

func (h *RaffleHandler) PauseRaffle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	ra, err := h.svc.PauseRaffle(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ra)
}

func (h *RaffleHandler) ResumeRaffle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	ra, err := h.svc.ResumeRaffle(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ra)
}

func (h *RaffleHandler) CancelRaffle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	ra, err := h.svc.CancelRaffle(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ra)
}

func (h *RaffleHandler) ClaimPrize(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "entryID"))
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
	entry, err := h.svc.ClaimPrize(r.Context(), id, body.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entry)
}

func (h *RaffleHandler) AddBonusTickets(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "entryID"))
	if !ok {
		return
	}
	var body struct {
		Count  int    `json:"count"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := h.svc.AddBonusTickets(r.Context(), id, body.Count, body.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entry)
}

func (h *RaffleHandler) AddReferralTickets(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "entryID"))
	if !ok {
		return
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := h.svc.AddReferralTickets(r.Context(), id, body.Count)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entry)
}

func (h *RaffleHandler) DisqualifyEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, chi.URLParam(r, "entryID"))
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := h.svc.DisqualifyEntry(r.Context(), id, body.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entry)
}
