package usecase

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/moodsync/moodsync-api/internal/model"
	"github.com/moodsync/moodsync-api/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository that mirrors the mongo
// repository's observable behavior, including its error values.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func copyUser(u *model.User) *model.User {
	clone := *u
	return &clone
}

func withoutPassword(u *model.User) *model.User {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if existing.Email == user.Email {
			return nil, mongo.WriteException{
				WriteErrors: mongo.WriteErrors{{Code: 11000}},
			}
		}
	}

	now := time.Now()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true
	user.EmailVerified = false
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	f.users[user.ID.Hex()] = copyUser(user)
	return copyUser(user), nil
}

func (f *fakeUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return withoutPassword(user), nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			return withoutPassword(user), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) GetUserByEmailWithPassword(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) GetUserByResetToken(_ context.Context, token string, now time.Time) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.PasswordResetToken == token &&
			user.PasswordResetExpires != nil &&
			user.PasswordResetExpires.After(now) {
			return withoutPassword(user), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) GetUserByVerificationToken(_ context.Context, token string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.EmailVerificationToken == token && token != "" {
			return withoutPassword(user), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) IncrementFailedLogins(_ context.Context, id string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return 0, mongo.ErrNoDocuments
	}
	user.FailedLoginAttempts++
	return user.FailedLoginAttempts, nil
}

func (f *fakeUserRepo) LockAccount(_ context.Context, id string, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.LockUntil = &until
	return nil
}

func (f *fakeUserRepo) RecordSuccessfulLogin(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.FailedLoginAttempts = 0
	user.LockUntil = nil
	user.LastLogin = &at
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.PasswordHash = passwordHash
	user.PasswordResetToken = ""
	user.PasswordResetExpires = nil
	user.FailedLoginAttempts = 0
	user.LockUntil = nil
	return nil
}

func (f *fakeUserRepo) SetPasswordResetToken(_ context.Context, id string, token string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.PasswordResetToken = token
	user.PasswordResetExpires = &expires
	return nil
}

func (f *fakeUserRepo) MarkEmailVerified(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.EmailVerified = true
	user.EmailVerificationToken = ""
	return nil
}

func (f *fakeUserRepo) ListUsers(_ context.Context, params repository.FilterUsersParams) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var users []*model.User
	for _, user := range f.users {
		if params.Role != nil && user.Role != *params.Role {
			continue
		}
		if params.Verified != nil && user.EmailVerified != *params.Verified {
			continue
		}
		users = append(users, withoutPassword(user))
	}
	return users, nil
}

// get returns the stored record for assertions on persisted state.
func (f *fakeUserRepo) get(id string) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyUser(f.users[id])
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)
