package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/moodsync/moodsync-api/internal/repository"
)

// ErrInvalidVerificationToken is returned for unknown or already-consumed
// verification tokens.
var ErrInvalidVerificationToken = errors.New("invalid verification token")

// VerifyEmailUsecase consumes single-use email verification tokens.
type VerifyEmailUsecase interface {
	VerifyEmail(ctx context.Context, token string) error
}

type verifyEmailUsecase struct {
	userRepo repository.UserRepository
	logger   *zerolog.Logger
}

// NewVerifyEmailUsecase creates a new VerifyEmailUsecase.
func NewVerifyEmailUsecase(userRepo repository.UserRepository, logger *zerolog.Logger) VerifyEmailUsecase {
	return &verifyEmailUsecase{userRepo: userRepo, logger: logger}
}

func (u *verifyEmailUsecase) VerifyEmail(ctx context.Context, token string) error {
	user, err := u.userRepo.GetUserByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidVerificationToken
		}

		return err
	}

	if err := u.userRepo.MarkEmailVerified(ctx, user.ID.Hex()); err != nil {
		return err
	}

	u.logger.Info().Str("email", user.Email).Msg("email verified")

	return nil
}
