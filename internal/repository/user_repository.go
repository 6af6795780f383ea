package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/qamaits/identity-server/internal/domain"
	"github.com/qamaits/identity-server/pkg/database"
)

// userRepository implements UserRepository over the users collection.
type userRepository struct {
	users *mongo.Collection
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *database.Mongo) UserRepository {
	return &userRepository{users: db.Collection(CollectionUsers)}
}

// EnsureUserIndexes creates the unique indexes that enforce username and
// email uniqueness. Duplicate-key rejection from these indexes is the sole
// authority for AlreadyExists; the pre-insert existence check is advisory.
func EnsureUserIndexes(ctx context.Context, db *database.Mongo) error {
	_, err := db.Collection(CollectionUsers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func (r *userRepository) FindUser(ctx context.Context, username, email string) (*domain.User, error) {
	filter := bson.M{"username": username}
	if email != "" {
		filter = bson.M{"$or": []bson.M{
			{"username": username},
			{"email": email},
		}}
	}

	var user domain.User
	err := r.users.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound(fmt.Sprintf("%s was not found", username))
		}
		return nil, domain.ErrStoreFailure("failed to find user", err)
	}
	return &user, nil
}

func (r *userRepository) Insert(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return r.collisionError(ctx, user.Username)
		}
		return domain.ErrStoreFailure("failed to insert user", err)
	}
	return nil
}

// collisionError distinguishes a username collision from an email one by
// checking which field already has a record.
func (r *userRepository) collisionError(ctx context.Context, username string) error {
	err := r.users.FindOne(ctx, bson.M{"username": username}).Err()
	if err == nil {
		return domain.ErrAlreadyExists("there is already someone with that username")
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrAlreadyExists("there is already an account with that email address")
	}
	return domain.ErrStoreFailure("failed to classify duplicate user", err)
}

func (r *userRepository) Update(ctx context.Context, username string, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()

	result, err := r.users.ReplaceOne(ctx, bson.M{"username": username}, user)
	if err != nil {
		return domain.ErrStoreFailure("failed to update user", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound(fmt.Sprintf("%s was not found", username))
	}
	return nil
}

func (r *userRepository) Any(ctx context.Context) (bool, error) {
	err := r.users.FindOne(ctx, bson.M{}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, domain.ErrStoreFailure("failed to probe users collection", err)
	}
	return true, nil
}
