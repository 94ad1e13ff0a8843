package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/moodsync/moodsync-api/internal/config"
	"github.com/moodsync/moodsync-api/internal/model"
	"github.com/moodsync/moodsync-api/shared/auth"
	"github.com/moodsync/moodsync-api/shared/mailer"
	"github.com/moodsync/moodsync-api/shared/security"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:              "test",
		ClientURL:        "http://localhost:5173",
		BcryptCost:       bcrypt.MinCost,
		MaxLoginAttempts: 5,
		LockoutDuration:  30 * time.Minute,
		ResetTokenTTL:    time.Hour,
	}
}

func newTestAuthUsecase(repo *fakeUserRepo) AuthUsecase {
	cfg := testConfig()
	logger := zerolog.Nop()

	return NewAuthUsecase(
		repo,
		security.NewPasswordHasher(cfg.BcryptCost),
		auth.NewJWTAuthenticator("test-secret", "moodsync-api", time.Hour),
		mailer.NewMailer(mailer.Config{}),
		cfg,
		&logger,
	)
}

func validRegisterParams() RegisterParams {
	return RegisterParams{
		Name:             "Alice Example",
		Email:            "Alice@Example.com",
		MobileNumber:     "0812345678",
		EmergencyContact: "0898765432",
		Password:         "Valid1Pass!",
		ConfirmPassword:  "Valid1Pass!",
	}
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	authUsecase := newTestAuthUsecase(repo)

	user, token, err := authUsecase.Register(context.Background(), validRegisterParams())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.False(t, user.EmailVerified)
	assert.Empty(t, user.PasswordHash)

	stored := repo.get(user.ID.Hex())
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "Valid1Pass!", stored.PasswordHash)
	assert.NotEmpty(t, stored.EmailVerificationToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	authUsecase := newTestAuthUsecase(repo)

	_, _, err := authUsecase.Register(context.Background(), validRegisterParams())
	require.NoError(t, err)

	// Different name and contacts, same email, different case.
	params := validRegisterParams()
	params.Name = "Another Person"
	params.Email = "ALICE@example.com"
	params.MobileNumber = "0855555555"
	params.EmergencyContact = "0866666666"

	_, _, err = authUsecase.Register(context.Background(), params)
	assert.ErrorIs(t, err, ErrEmailAlreadyInUse)
}

func TestRegisterValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterParams)
		want   error
	}{
		{
			name:   "password mismatch",
			mutate: func(p *RegisterParams) { p.ConfirmPassword = "Other1Pass!" },
			want:   ErrPasswordMismatch,
		},
		{
			name: "emergency contact equals mobile number",
			mutate: func(p *RegisterParams) {
				p.EmergencyContact = p.MobileNumber
			},
			want: ErrSameContact,
		},
		{
			name:   "unknown role",
			mutate: func(p *RegisterParams) { p.Role = "superadmin" },
			want:   ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo()
			authUsecase := newTestAuthUsecase(repo)

			params := validRegisterParams()
			tt.mutate(&params)

			_, _, err := authUsecase.Register(context.Background(), params)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	repo := newFakeUserRepo()
	authUsecase := newTestAuthUsecase(repo)

	params := validRegisterParams()
	params.Password = "alllower1!"
	params.ConfirmPassword = "alllower1!"

	_, _, err := authUsecase.Register(context.Background(), params)

	var weak *WeakPasswordError
	require.ErrorAs(t, err, &weak)
	assert.Equal(t, "Password must contain at least one uppercase letter", weak.Reason)
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	authUsecase := newTestAuthUsecase(repo)

	registered, _, err := authUsecase.Register(context.Background(), validRegisterParams())
	require.NoError(t, err)

	user, token, err := authUsecase.Login(context.Background(), LoginParams{
		Email:    "alice@example.com",
		Password: "Valid1Pass!",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, registered.ID, user.ID)
	assert.Empty(t, user.PasswordHash)
	require.NotNil(t, user.LastLogin)

	stored := repo.get(user.ID.Hex())
	assert.Zero(t, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockUntil)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := newFakeUserRepo()
	authUsecase := newTestAuthUsecase(repo)

	_, _, err := authUsecase.Login(context.Background(), LoginParams{
		Email:    "nobody@example.com",
		Password: "Valid1Pass!",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	repo := newFakeUserRepo()
	authUsecase := newTestAuthUsecase(repo)

	registered, _, err := authUsecase.Register(context.Background(), validRegisterParams())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, _, err := authUsecase.Login(context.Background(), LoginParams{
			Email:    "alice@example.com",
			Password: "Wrong1Pass!",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	stored := repo.get(registered.ID.Hex())
	assert.Equal(t, 5, stored.FailedLoginAttempts)
	require.NotNil(t, stored.LockUntil)

	// The correct password does not get through while the lock holds.
	_, _, err = authUsecase.Login(context.Background(), LoginParams{
		Email:    "alice@example.com",
		Password: "Valid1Pass!",
	})
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestLoginAfterLockExpiry(t *testing.T) {
	repo := newFakeUserRepo()
	authUsecase := newTestAuthUsecase(repo)

	registered, _, err := authUsecase.Register(context.Background(), validRegisterParams())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, _, _ = authUsecase.Login(context.Background(), LoginParams{
			Email:    "alice@example.com",
			Password: "Wrong1Pass!",
		})
	}

	// Simulate the lock window having passed.
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, repo.LockAccount(context.Background(), registered.ID.Hex(), expired))

	_, token, err := authUsecase.Login(context.Background(), LoginParams{
		Email:    "alice@example.com",
		Password: "Valid1Pass!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	stored := repo.get(registered.ID.Hex())
	assert.Zero(t, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockUntil)
}

func TestGetCurrentUser(t *testing.T) {
	repo := newFakeUserRepo()
	authUsecase := newTestAuthUsecase(repo)

	registered, _, err := authUsecase.Register(context.Background(), validRegisterParams())
	require.NoError(t, err)

	user, err := authUsecase.GetCurrentUser(context.Background(), registered.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, registered.Email, user.Email)
	assert.Empty(t, user.PasswordHash)
}

func TestGetCurrentUserGone(t *testing.T) {
	repo := newFakeUserRepo()
	authUsecase := newTestAuthUsecase(repo)

	_, err := authUsecase.GetCurrentUser(context.Background(), "64f000000000000000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
