// Package handler exposes the authentication operations over HTTP.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/moodsync/moodsync-api/internal/config"
	"github.com/moodsync/moodsync-api/internal/middleware"
	"github.com/moodsync/moodsync-api/internal/payload"
	"github.com/moodsync/moodsync-api/internal/repository"
	"github.com/moodsync/moodsync-api/internal/usecase"
	"github.com/moodsync/moodsync-api/shared/validator"
)

// AuthHandler handles the /api/auth routes.
type AuthHandler struct {
	authUsecase        usecase.AuthUsecase
	passwordReset      usecase.PasswordResetUsecase
	verifyEmailUsecase usecase.VerifyEmailUsecase
	validate           *validator.Validator
	cfg                *config.Config
	logger             *zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	passwordReset usecase.PasswordResetUsecase,
	verifyEmailUsecase usecase.VerifyEmailUsecase,
	validate *validator.Validator,
	cfg *config.Config,
	logger *zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUsecase:        authUsecase,
		passwordReset:      passwordReset,
		verifyEmailUsecase: verifyEmailUsecase,
		validate:           validate,
		cfg:                cfg,
		logger:             logger,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, token, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Name:             req.Name,
		Email:            req.Email,
		MobileNumber:     req.MobileNumber,
		EmergencyContact: req.EmergencyContact,
		Password:         req.Password,
		ConfirmPassword:  req.ConfirmPassword,
		Role:             req.Role,
	})
	if err != nil {
		respondUsecaseError(w, err, h.cfg, h.logger)
		return
	}

	respondJSON(w, http.StatusCreated, payload.AuthResponse{
		Success: true,
		Message: "User registered successfully",
		Token:   token,
		User:    user,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, token, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondUsecaseError(w, err, h.cfg, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, payload.AuthResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    user,
	})
}

// GetCurrentUser handles GET /api/auth/me.
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.authUsecase.GetCurrentUser(r.Context(), claims.UserID)
	if err != nil {
		respondUsecaseError(w, err, h.cfg, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, payload.UserResponse{Success: true, User: user})
}

// ForgotPassword handles POST /api/auth/forgot-password. The response is
// identical whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.passwordReset.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		respondUsecaseError(w, err, h.cfg, h.logger)
		return
	}

	resp := messageResponse{
		Success: true,
		Message: "If your email is registered, a password reset link will be sent",
	}
	if h.cfg.IsDevelopment() {
		resp.ResetToken = token
	}

	respondJSON(w, http.StatusOK, resp)
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.passwordReset.ResetPassword(r.Context(), req.Token, req.Password, req.ConfirmPassword)
	if err != nil {
		respondUsecaseError(w, err, h.cfg, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Password reset successful",
	})
}

// VerifyEmail handles GET /api/auth/verify-email/{token}.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := h.verifyEmailUsecase.VerifyEmail(r.Context(), token); err != nil {
		respondUsecaseError(w, err, h.cfg, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Email verified successfully",
	})
}

// ListUsers handles GET /api/auth/users (admin only).
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := repository.FilterUsersParams{}

	if role := r.URL.Query().Get("role"); role != "" {
		params.Role = &role
	}
	if limit, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil {
		params.Limit = limit
	}
	if offset, err := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 64); err == nil {
		params.Offset = offset
	}

	users, err := h.authUsecase.ListUsers(r.Context(), params)
	if err != nil {
		respondUsecaseError(w, err, h.cfg, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, payload.UsersResponse{Success: true, Users: users})
}

// decode parses and validates a JSON request body. It writes the error
// response itself and reports whether the caller should proceed.
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if fieldErrors := h.validate.ValidateStruct(req); fieldErrors != nil {
		respondValidationErrors(w, fieldErrors)
		return false
	}

	return true
}
