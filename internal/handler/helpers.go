package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/instantin-me/commerce-core/internal/apperr"
)

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("handler: failed to write JSON response")
	}
}

// respondServiceError maps the error taxonomy to HTTP statuses. Invariant
// violations are deliberately reported as a generic failure: internal state
// does not leak to callers.
func respondServiceError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		respondWithError(w, http.StatusBadRequest, err.Error())
	case apperr.KindConflict:
		respondWithError(w, http.StatusConflict, err.Error())
	case apperr.KindNotFound:
		respondWithError(w, http.StatusNotFound, err.Error())
	case apperr.KindInvariant:
		log.Error().Err(err).Msg("handler: invariant violation")
		respondWithError(w, http.StatusInternalServerError, "internal error")
	case apperr.KindExternal:
		respondWithError(w, http.StatusBadGateway, "upstream service failure")
	default:
		log.Error().Err(err).Msg("handler: unclassified error")
		respondWithError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseIDParam parses a UUID path parameter already extracted by the router.
func parseIDParam(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.FromString(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
