package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/moodsync/moodsync-api/internal/config"
	"github.com/moodsync/moodsync-api/internal/repository"
	"github.com/moodsync/moodsync-api/shared/mailer"
	"github.com/moodsync/moodsync-api/shared/security"
)

// ErrInvalidResetToken covers unknown, expired, and already-consumed reset
// tokens alike.
var ErrInvalidResetToken = errors.New("invalid or expired token")

// PasswordResetUsecase defines the password recovery operations.
type PasswordResetUsecase interface {
	// ForgotPassword opens a reset window for the account, if it exists. It
	// never reveals whether the email is registered; the returned token is
	// non-empty only when an account matched, and is exposed to the client
	// in development builds only.
	ForgotPassword(ctx context.Context, email string) (string, error)

	// ResetPassword consumes a reset token and replaces the credential. It
	// also clears any lockout state so a reset recovers a locked account.
	ResetPassword(ctx context.Context, token, password, confirmPassword string) error
}

type passwordResetUsecase struct {
	userRepo repository.UserRepository
	hasher   *security.PasswordHasher
	mailer   *mailer.Mailer
	cfg      *config.Config
	logger   *zerolog.Logger
}

// NewPasswordResetUsecase creates a new PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	hasher *security.PasswordHasher,
	m *mailer.Mailer,
	cfg *config.Config,
	logger *zerolog.Logger,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		mailer:   m,
		cfg:      cfg,
		logger:   logger,
	}
}

func (u *passwordResetUsecase) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Do not reveal that the email is unknown.
			return "", nil
		}

		return "", err
	}

	token, err := security.GenerateOpaqueToken()
	if err != nil {
		return "", err
	}

	expires := time.Now().Add(u.cfg.ResetTokenTTL)
	if err := u.userRepo.SetPasswordResetToken(ctx, user.ID.Hex(), token, expires); err != nil {
		return "", err
	}

	u.sendResetEmail(user.Email, token)
	u.logger.Info().Str("email", user.Email).Msg("password reset requested")

	return token, nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, token, password, confirmPassword string) error {
	if password != confirmPassword {
		return ErrPasswordMismatch
	}

	if check := security.ValidatePasswordStrength(password); !check.Valid {
		return &WeakPasswordError{Reason: check.Reason}
	}

	user, err := u.userRepo.GetUserByResetToken(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidResetToken
		}

		return err
	}

	passwordHash, err := u.hasher.Hash(password)
	if err != nil {
		return err
	}

	if err := u.userRepo.UpdatePassword(ctx, user.ID.Hex(), passwordHash); err != nil {
		return err
	}

	u.logger.Info().Str("email", user.Email).Msg("password reset successful")

	return nil
}

func (u *passwordResetUsecase) sendResetEmail(email, token string) {
	if !u.mailer.Enabled() {
		return
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", u.cfg.ClientURL, token)
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, please click the link below to create a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s for your security.</p>
		<p>If you did not request a password reset, you can safely ignore this email.</p>

		<p>Thank you,</p>
		<p>MoodSync Team</p>
	`, resetLink, resetLink, u.cfg.ResetTokenTTL)

	logger := u.logger
	go func() {
		if err := u.mailer.SendHTML([]string{email}, "Password Reset Request", htmlBody); err != nil {
			logger.Error().Err(err).Str("email", email).Msg("failed to send password reset email")
		}
	}()
}
