// Package usecase implements the authentication state transitions over the
// user account store. Handlers translate the sentinel errors declared here
// into HTTP responses.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/moodsync/moodsync-api/internal/config"
	"github.com/moodsync/moodsync-api/internal/model"
	"github.com/moodsync/moodsync-api/internal/repository"
	"github.com/moodsync/moodsync-api/shared/auth"
	"github.com/moodsync/moodsync-api/shared/mailer"
	"github.com/moodsync/moodsync-api/shared/security"
)

var (
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrEmailAlreadyInUse = errors.New("email already in use")
	ErrSameContact       = errors.New("emergency contact cannot be the same as the mobile number")
	ErrInvalidRole       = errors.New("invalid role")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is temporarily locked")

	ErrUserNotFound = errors.New("user not found")
)

// WeakPasswordError carries the first credential-policy rule the password
// failed. The reason is safe to expose to the caller.
type WeakPasswordError struct {
	Reason string
}

func (e *WeakPasswordError) Error() string {
	return e.Reason
}

// AuthUsecase defines the register, login, and current-user operations.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*model.User, string, error)
	Login(ctx context.Context, params LoginParams) (*model.User, string, error)
	GetCurrentUser(ctx context.Context, userID string) (*model.User, error)
	ListUsers(ctx context.Context, params repository.FilterUsersParams) ([]*model.User, error)
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Name             string
	Email            string
	MobileNumber     string
	EmergencyContact string
	Password         string
	ConfirmPassword  string
	Role             string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

type authUsecase struct {
	userRepo repository.UserRepository
	hasher   *security.PasswordHasher
	jwtAuth  *auth.JWTAuthenticator
	mailer   *mailer.Mailer
	cfg      *config.Config
	logger   *zerolog.Logger
}

// NewAuthUsecase creates a new AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	hasher *security.PasswordHasher,
	jwtAuth *auth.JWTAuthenticator,
	m *mailer.Mailer,
	cfg *config.Config,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		jwtAuth:  jwtAuth,
		mailer:   m,
		cfg:      cfg,
		logger:   logger,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*model.User, string, error) {
	if params.Password != params.ConfirmPassword {
		return nil, "", ErrPasswordMismatch
	}

	if check := security.ValidatePasswordStrength(params.Password); !check.Valid {
		return nil, "", &WeakPasswordError{Reason: check.Reason}
	}

	if params.MobileNumber == params.EmergencyContact {
		return nil, "", ErrSameContact
	}

	role := params.Role
	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return nil, "", ErrInvalidRole
	}

	email := NormalizeEmail(params.Email)

	passwordHash, err := u.hasher.Hash(params.Password)
	if err != nil {
		return nil, "", err
	}

	verificationToken, err := security.GenerateOpaqueToken()
	if err != nil {
		return nil, "", err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Name:                   strings.TrimSpace(params.Name),
		Email:                  email,
		MobileNumber:           strings.TrimSpace(params.MobileNumber),
		EmergencyContact:       strings.TrimSpace(params.EmergencyContact),
		PasswordHash:           passwordHash,
		Role:                   role,
		EmailVerificationToken: verificationToken,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, "", ErrEmailAlreadyInUse
		}

		return nil, "", err
	}

	token, err := u.jwtAuth.GenerateToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}

	u.sendVerificationEmail(user.Email, verificationToken)
	u.logger.Info().Str("email", user.Email).Msg("new user registered")

	user.PasswordHash = ""
	return user, token, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*model.User, string, error) {
	email := NormalizeEmail(params.Email)

	user, err := u.userRepo.GetUserByEmailWithPassword(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", ErrInvalidCredentials
		}

		return nil, "", err
	}

	now := time.Now()
	if user.Locked(now) {
		return nil, "", ErrAccountLocked
	}

	match, err := u.hasher.Verify(params.Password, user.PasswordHash)
	if err != nil {
		return nil, "", err
	}

	if !match {
		if err := u.recordFailedLogin(ctx, user); err != nil {
			return nil, "", err
		}

		return nil, "", ErrInvalidCredentials
	}

	if err := u.userRepo.RecordSuccessfulLogin(ctx, user.ID.Hex(), now); err != nil {
		return nil, "", err
	}
	user.FailedLoginAttempts = 0
	user.LockUntil = nil
	user.LastLogin = &now

	token, err := u.jwtAuth.GenerateToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}

	u.logger.Info().Str("email", user.Email).Msg("user logged in")

	user.PasswordHash = ""
	return user, token, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

func (u *authUsecase) ListUsers(
	ctx context.Context,
	params repository.FilterUsersParams,
) ([]*model.User, error) {
	return u.userRepo.ListUsers(ctx, params)
}

// recordFailedLogin bumps the counter atomically and locks the account once
// the threshold is reached.
func (u *authUsecase) recordFailedLogin(ctx context.Context, user *model.User) error {
	attempts, err := u.userRepo.IncrementFailedLogins(ctx, user.ID.Hex())
	if err != nil {
		return err
	}

	if attempts >= u.cfg.MaxLoginAttempts {
		until := time.Now().Add(u.cfg.LockoutDuration)
		if err := u.userRepo.LockAccount(ctx, user.ID.Hex(), until); err != nil {
			return err
		}

		u.logger.Warn().
			Str("email", user.Email).
			Int("attempts", attempts).
			Time("lock_until", until).
			Msg("account locked after repeated failed logins")
	}

	return nil
}

// sendVerificationEmail delivers the verification link without blocking the
// response. Failures are logged and otherwise ignored.
func (u *authUsecase) sendVerificationEmail(email, token string) {
	if !u.mailer.Enabled() {
		return
	}

	verifyLink := fmt.Sprintf("%s/verify-email/%s", u.cfg.ClientURL, token)
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>Welcome to MoodSync. Please confirm your email address by clicking the link below:</p>

		<p><a href="%s">%s</a></p>

		<p>If you did not create an account, you can safely ignore this email.</p>

		<p>Thank you,</p>
		<p>MoodSync Team</p>
	`, verifyLink, verifyLink)

	logger := u.logger
	go func() {
		if err := u.mailer.SendHTML([]string{email}, "Verify your email", htmlBody); err != nil {
			logger.Error().Err(err).Str("email", email).Msg("failed to send verification email")
		}
	}()
}

// NormalizeEmail lowercases and trims an email address so identity lookups
// are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
