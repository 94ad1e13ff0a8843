// Package payload defines the JSON request and response bodies of the auth
// HTTP surface.
package payload

import "github.com/moodsync/moodsync-api/internal/model"

type RegisterRequest struct {
	Name             string `json:"name"             validate:"required,min=2,max=100"`
	Email            string `json:"email"            validate:"required,email"`
	MobileNumber     string `json:"mobileNumber"     validate:"required"`
	EmergencyContact string `json:"emergencyContact" validate:"required"`
	Password         string `json:"password"         validate:"required"`
	ConfirmPassword  string `json:"confirmPassword"  validate:"required"`
	Role             string `json:"role"             validate:"omitempty,oneof=user doctor admin"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token"           validate:"required"`
	Password        string `json:"password"        validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type AuthResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

type UserResponse struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user"`
}

type UsersResponse struct {
	Success bool          `json:"success"`
	Users   []*model.User `json:"users"`
}
