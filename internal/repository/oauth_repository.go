package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/qamaits/identity-server/internal/domain"
	"github.com/qamaits/identity-server/pkg/database"
)

// oauthRepository implements OAuthRepository over the oauth collection.
// Every persisted link is backed by an object record, so the repository
// composes with the object repository for id allocation.
type oauthRepository struct {
	oauth   *mongo.Collection
	objects ObjectRepository
}

// NewOAuthRepository creates a new OAuth link repository.
func NewOAuthRepository(db *database.Mongo, objects ObjectRepository) OAuthRepository {
	return &oauthRepository{
		oauth:   db.Collection(CollectionOAuth),
		objects: objects,
	}
}

// EnsureOAuthIndexes creates the unique index on provider name.
func EnsureOAuthIndexes(ctx context.Context, db *database.Mongo) error {
	_, err := db.Collection(CollectionOAuth).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create oauth indexes: %w", err)
	}
	return nil
}

func (r *oauthRepository) FindByName(ctx context.Context, name string) (*domain.ProviderLink, error) {
	var link domain.ProviderLink
	err := r.oauth.FindOne(ctx, bson.M{"name": name}).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound(fmt.Sprintf("oauth config for %s was not found", name))
		}
		return nil, domain.ErrStoreFailure("failed to find oauth link", err)
	}
	return &link, nil
}

func (r *oauthRepository) Insert(ctx context.Context, link *domain.ProviderLink) (string, error) {
	id, err := r.objects.Insert(ctx, domain.ObjectTypeOAuth)
	if err != nil {
		return "", err
	}
	link.ID = id

	if _, err := r.oauth.InsertOne(ctx, link); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", domain.ErrAlreadyExists(fmt.Sprintf("provider %s is already linked", link.Name))
		}
		return "", domain.ErrStoreFailure("failed to insert oauth link", err)
	}
	return id, nil
}
