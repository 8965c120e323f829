package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/atelierworks/jewelqc-backend/qc"
	"github.com/atelierworks/jewelqc-backend/services"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Errors: []APIErrorDetail{
			{
				Code:   code,
				Status: strconv.Itoa(httpStatus),
				Detail: detail,
			},
		},
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// WriteServiceError maps service-layer errors onto the API error envelope.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, qc.ErrValidation):
		WriteAPIError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, qc.ErrInputDecode):
		WriteAPIError(w, http.StatusBadRequest, "input_decode_failed", err.Error())
	case errors.Is(err, qc.ErrNotFound):
		WriteAPIError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, services.ErrTrialLimitReached):
		WriteAPIError(w, http.StatusPaymentRequired, "trial_limit_reached", err.Error())
	case errors.Is(err, qc.ErrInspectionFailed):
		WriteAPIError(w, http.StatusInternalServerError, "inspection_failed", err.Error())
	default:
		log.Printf("handlers: unhandled service error: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}
