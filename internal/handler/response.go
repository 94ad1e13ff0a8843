package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/moodsync/moodsync-api/internal/config"
	"github.com/moodsync/moodsync-api/internal/usecase"
	"github.com/moodsync/moodsync-api/shared/validator"
)

// errorResponse is the envelope for every failed request.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
}

// messageResponse is the envelope for successes that carry no entity.
type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// ResetToken is populated in development builds only.
	ResetToken string `json:"resetToken,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Success: false, Message: message})
}

func respondValidationErrors(w http.ResponseWriter, fieldErrors []validator.FieldError) {
	respondJSON(w, http.StatusBadRequest, errorResponse{
		Success: false,
		Message: "Validation failed",
		Errors:  fieldErrors,
	})
}

// respondUsecaseError translates domain failures into HTTP responses. Expected
// conditions keep their user-facing message; anything else becomes a 500 whose
// detail leaves the process only in development builds.
func respondUsecaseError(w http.ResponseWriter, err error, cfg *config.Config, logger *zerolog.Logger) {
	var weak *usecase.WeakPasswordError
	if errors.As(err, &weak) {
		respondError(w, http.StatusBadRequest, weak.Reason)
		return
	}

	switch {
	case errors.Is(err, usecase.ErrPasswordMismatch):
		respondError(w, http.StatusBadRequest, "Passwords do not match")
	case errors.Is(err, usecase.ErrEmailAlreadyInUse):
		respondError(w, http.StatusBadRequest, "Email already in use")
	case errors.Is(err, usecase.ErrSameContact):
		respondError(w, http.StatusBadRequest, "Emergency contact cannot be the same as your mobile number")
	case errors.Is(err, usecase.ErrInvalidRole):
		respondError(w, http.StatusBadRequest, "Role must be one of: user, doctor, admin")
	case errors.Is(err, usecase.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, usecase.ErrAccountLocked):
		respondError(w, http.StatusUnauthorized, "Account is temporarily locked. Please try again later.")
	case errors.Is(err, usecase.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, usecase.ErrInvalidResetToken):
		respondError(w, http.StatusBadRequest, "Invalid or expired token")
	case errors.Is(err, usecase.ErrInvalidVerificationToken):
		respondError(w, http.StatusBadRequest, "Invalid verification token")
	default:
		logger.Error().Stack().Err(err).Msg("unexpected error")
		message := "Internal server error"
		if cfg.IsDevelopment() {
			message = err.Error()
		}
		respondError(w, http.StatusInternalServerError, message)
	}
}
