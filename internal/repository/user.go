package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/moodsync/moodsync-api/internal/model"
)

// UserRepository defines the interface for user account persistence. Reads
// exclude the password hash unless the method name says otherwise; hashing
// happens in the usecase layer, so every credential passed in here is already
// a digest.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByEmailWithPassword(ctx context.Context, email string) (*model.User, error)
	GetUserByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*model.User, error)

	// IncrementFailedLogins atomically bumps the failed-login counter and
	// returns the post-increment value.
	IncrementFailedLogins(ctx context.Context, id string) (int, error)
	LockAccount(ctx context.Context, id string, until time.Time) error
	RecordSuccessfulLogin(ctx context.Context, id string, at time.Time) error

	// UpdatePassword replaces the credential and clears the reset token and
	// any lockout state. A successful reset is a recovery path that also
	// unlocks the account.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	SetPasswordResetToken(ctx context.Context, id string, token string, expires time.Time) error
	MarkEmailVerified(ctx context.Context, id string) error

	ListUsers(ctx context.Context, params FilterUsersParams) ([]*model.User, error)
}

// FilterUsersParams defines the parameters for filtering and paginating users.
type FilterUsersParams struct {
	Role     *string
	Verified *bool
	Limit    int64
	Offset   int64
}

const userCollection = "users"

// excludePassword is the default read projection.
var excludePassword = bson.M{"password_hash": 0}

type userMongoRepository struct {
	db *mongo.Database
}

// NewUserMongoRepository creates the mongo-backed user repository and ensures
// the unique email index exists.
func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "password_reset_token", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "email_verification_token", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true
	user.EmailVerified = false
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	return r.findOne(ctx, bson.M{"_id": objectID}, options.FindOne().SetProjection(excludePassword))
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, options.FindOne().SetProjection(excludePassword))
}

func (r *userMongoRepository) GetUserByEmailWithPassword(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userMongoRepository) GetUserByResetToken(
	ctx context.Context,
	token string,
	now time.Time,
) (*model.User, error) {
	filter := bson.M{
		"password_reset_token":   token,
		"password_reset_expires": bson.M{"$gt": now},
	}

	return r.findOne(ctx, filter, options.FindOne().SetProjection(excludePassword))
}

func (r *userMongoRepository) GetUserByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	filter := bson.M{"email_verification_token": token}

	return r.findOne(ctx, filter, options.FindOne().SetProjection(excludePassword))
}

func (r *userMongoRepository) IncrementFailedLogins(ctx context.Context, id string) (int, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, mongo.ErrNoDocuments
	}

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$inc": bson.M{"failed_login_attempts": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(excludePassword),
	)
	if result.Err() != nil {
		return 0, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return 0, err
	}

	return user.FailedLoginAttempts, nil
}

func (r *userMongoRepository) LockAccount(ctx context.Context, id string, until time.Time) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"lock_until": until,
			"updated_at": time.Now(),
		}},
	)
	return err
}

func (r *userMongoRepository) RecordSuccessfulLogin(ctx context.Context, id string, at time.Time) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$set": bson.M{
				"failed_login_attempts": 0,
				"last_login":            at,
				"updated_at":            at,
			},
			"$unset": bson.M{"lock_until": ""},
		},
	)
	return err
}

func (r *userMongoRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$set": bson.M{
				"password_hash":         passwordHash,
				"failed_login_attempts": 0,
				"updated_at":            time.Now(),
			},
			"$unset": bson.M{
				"password_reset_token":   "",
				"password_reset_expires": "",
				"lock_until":             "",
			},
		},
	)
	return err
}

func (r *userMongoRepository) SetPasswordResetToken(
	ctx context.Context,
	id string,
	token string,
	expires time.Time,
) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"password_reset_token":   token,
			"password_reset_expires": expires,
			"updated_at":             time.Now(),
		}},
	)
	return err
}

func (r *userMongoRepository) MarkEmailVerified(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$set":   bson.M{"email_verified": true, "updated_at": time.Now()},
			"$unset": bson.M{"email_verification_token": ""},
		},
	)
	return err
}

func (r *userMongoRepository) ListUsers(ctx context.Context, params FilterUsersParams) ([]*model.User, error) {
	findOptions := options.Find().SetProjection(excludePassword)

	limit := params.Limit
	if limit == 0 {
		limit = 10
	}
	findOptions.SetLimit(limit)

	if params.Offset > 0 {
		findOptions.SetSkip(params.Offset)
	}

	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})

	filter := bson.M{}
	if params.Role != nil {
		filter["role"] = *params.Role
	}
	if params.Verified != nil {
		filter["email_verified"] = *params.Verified
	}

	cursor, err := r.db.Collection(userCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*model.User
	for cursor.Next(ctx) {
		var user model.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userMongoRepository) findOne(
	ctx context.Context,
	filter bson.M,
	opts ...options.Lister[options.FindOneOptions],
) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, filter, opts...)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}
