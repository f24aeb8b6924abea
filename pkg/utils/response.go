package utils

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	Message string `json:"message"`
}

// ValidationResponse is the 422 payload: a message plus a
// field to messages map.
type ValidationResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func RespondWithJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, Response{Message: message})
}

func RespondWithValidationErrors(w http.ResponseWriter, fields map[string][]string) {
	RespondWithJSON(w, http.StatusUnprocessableEntity, ValidationResponse{
		Message: "The given data was invalid.",
		Errors:  fields,
	})
}
