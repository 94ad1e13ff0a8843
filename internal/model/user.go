package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Roles a user account can hold.
const (
	RoleUser   = "user"
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// User represents a user account in the authentication system. The password
// hash is write-only from the API's perspective; it is excluded from JSON and
// from default read projections in the repository.
type User struct {
	ID                     bson.ObjectID `bson:"_id,omitempty"        json:"id"`
	Name                   string        `bson:"name"                 json:"name"`
	Email                  string        `bson:"email"                json:"email"`
	MobileNumber           string        `bson:"mobile_number"        json:"mobileNumber"`
	EmergencyContact       string        `bson:"emergency_contact"    json:"emergencyContact"`
	PasswordHash           string        `bson:"password_hash,omitempty" json:"-"`
	Role                   string        `bson:"role"                 json:"role"`
	IsActive               bool          `bson:"is_active"            json:"isActive"`
	EmailVerified          bool          `bson:"email_verified"       json:"emailVerified"`
	EmailVerificationToken string        `bson:"email_verification_token,omitempty" json:"-"`
	PasswordResetToken     string        `bson:"password_reset_token,omitempty"     json:"-"`
	PasswordResetExpires   *time.Time    `bson:"password_reset_expires,omitempty"   json:"-"`
	FailedLoginAttempts    int           `bson:"failed_login_attempts" json:"-"`
	LockUntil              *time.Time    `bson:"lock_until,omitempty"  json:"-"`
	LastLogin              *time.Time    `bson:"last_login,omitempty"  json:"lastLogin,omitempty"`
	CreatedAt              time.Time     `bson:"created_at"            json:"createdAt"`
	UpdatedAt              time.Time     `bson:"updated_at"            json:"updatedAt"`
}

// Locked reports whether the account is locked out at the given instant.
// Lock expiry is lazy: once now passes LockUntil the account counts as
// unlocked without any background sweep.
func (u *User) Locked(now time.Time) bool {
	return u.LockUntil != nil && now.Before(*u.LockUntil)
}
