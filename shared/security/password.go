// Package security provides password hashing, password strength validation,
// and opaque token generation for the authentication core.
package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// ErrHashingFailure indicates an internal failure while hashing or comparing
// a password. It is never returned for a simple mismatch.
var ErrHashingFailure = errors.New("password hashing failure")

// specialCharacters is the punctuation set a password must draw from.
const specialCharacters = `!@#$%^&*(),.?":{}|<>`

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a bcrypt-based hasher. Costs outside the valid
// bcrypt range fall back to the default cost of 12.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = 12
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt digest of the given plaintext password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}
	return string(digest), nil
}

// Verify reports whether the plaintext password matches the digest. A mismatch
// returns (false, nil); any other failure is surfaced as ErrHashingFailure so
// callers cannot mistake a broken digest for a match.
func (h *PasswordHasher) Verify(password, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrHashingFailure, err)
}

// StrengthResult is the outcome of a password strength check.
type StrengthResult struct {
	Valid  bool
	Reason string
}

// ValidatePasswordStrength checks a password against the credential policy.
// Rules are evaluated in order and the first failure wins.
func ValidatePasswordStrength(password string) StrengthResult {
	if len(password) < 8 {
		return StrengthResult{Reason: "Password must be at least 8 characters long"}
	}

	if !strings.ContainsFunc(password, unicode.IsUpper) {
		return StrengthResult{Reason: "Password must contain at least one uppercase letter"}
	}

	if !strings.ContainsFunc(password, unicode.IsLower) {
		return StrengthResult{Reason: "Password must contain at least one lowercase letter"}
	}

	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return StrengthResult{Reason: "Password must contain at least one number"}
	}

	if !strings.ContainsAny(password, specialCharacters) {
		return StrengthResult{Reason: "Password must contain at least one special character"}
	}

	return StrengthResult{Valid: true}
}

// GenerateOpaqueToken returns a cryptographically random hex string used for
// password reset and email verification tokens. The token carries no
// structure; it is looked up by equality in the store.
func GenerateOpaqueToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
