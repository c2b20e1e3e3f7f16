package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"proteinbuddy/internal/ledger"
	"proteinbuddy/internal/service"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	writeJSON(w, status, errorBody{Error: userMsg})
}

// respondWithServiceError maps ledger and service errors onto HTTP statuses
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var validationErr *ledger.ValidationError
	var storageErr *ledger.StorageError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: validationErr.Message, Field: validationErr.Field})
	case errors.Is(err, ledger.ErrAccountNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: MsgAccountNotFound})
	case errors.Is(err, ledger.ErrDayNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "day not found"})
	case errors.Is(err, service.ErrFoodNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: MsgFoodNotFound})
	case errors.Is(err, service.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorBody{Error: "an account with this email already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "incorrect password"})
	case errors.Is(err, service.ErrLookupDisabled), errors.Is(err, service.ErrLookupUnavailable),
		errors.Is(err, service.ErrLookupRejected), errors.Is(err, service.ErrEmailDisabled):
		respondWithError(w, http.StatusServiceUnavailable, MsgRetryLater, logMsg, err)
	case errors.As(err, &storageErr):
		respondWithError(w, http.StatusServiceUnavailable, MsgRetryLater, logMsg, err)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

// decodeJSON reads a JSON request body into v, writing the error response
// itself when the body is unusable
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: ErrRequestTooLarge})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidRequestBody})
		return false
	}
	return true
}
