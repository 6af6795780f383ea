package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/qamaits/identity-server/internal/domain"
	"github.com/qamaits/identity-server/pkg/database"
)

// objectRepository implements ObjectRepository over the objects collection.
type objectRepository struct {
	objects *mongo.Collection
}

// NewObjectRepository creates a new object repository.
func NewObjectRepository(db *database.Mongo) ObjectRepository {
	return &objectRepository{objects: db.Collection(CollectionObjects)}
}

func (r *objectRepository) Insert(ctx context.Context, objType string) (string, error) {
	obj := domain.Object{
		ID:           primitive.NewObjectID().Hex(),
		Type:         objType,
		CreationTime: time.Now().UTC(),
	}

	if _, err := r.objects.InsertOne(ctx, obj); err != nil {
		return "", domain.ErrStoreFailure("failed to insert object", err)
	}
	return obj.ID, nil
}
