package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Iamabhih/storefront-cart/internal/domain"
	"github.com/Iamabhih/storefront-cart/internal/service"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondDomainError maps the cart error taxonomy to specific HTTP failures.
// Every user-facing failure names its cause; nothing collapses into a
// generic "something went wrong".
func respondDomainError(w http.ResponseWriter, err error) {
	var rejected *domain.CouponRejectedError
	switch {
	case errors.As(err, &rejected):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  rejected.Error(),
			Code:   "coupon_rejected",
			Reason: rejected.Reason,
		})
	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusBadRequest, "validation_error", "input failed validation")
	case errors.Is(err, domain.ErrConstraintViolation):
		respondError(w, http.StatusConflict, "constraint_violation", "item quantity bounds are inconsistent")
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "referenced item does not exist")
	case errors.Is(err, domain.ErrDecodeFailure):
		respondError(w, http.StatusBadRequest, "invalid_share_code", "shared cart code is not valid")
	case errors.Is(err, domain.ErrPersistence):
		respondError(w, http.StatusServiceUnavailable, "persistence_failure", "cart could not be saved, please retry")
	case errors.Is(err, service.ErrSuperseded):
		respondError(w, http.StatusConflict, "superseded", "a newer coupon request replaced this one")
	default:
		log.Printf("unhandled cart error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
