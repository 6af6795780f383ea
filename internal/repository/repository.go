package repository

import (
	"context"

	"github.com/qamaits/identity-server/pkg/database"
)

// Repositories aggregates all credential-store repositories.
type Repositories struct {
	User   UserRepository
	Object ObjectRepository
	OAuth  OAuthRepository
}

// NewRepositories creates all repositories over the shared Mongo handle.
func NewRepositories(db *database.Mongo) *Repositories {
	objects := NewObjectRepository(db)
	return &Repositories{
		User:   NewUserRepository(db),
		Object: objects,
		OAuth:  NewOAuthRepository(db, objects),
	}
}

// EnsureIndexes creates the unique indexes backing the store's uniqueness
// guarantees. Called once at startup.
func EnsureIndexes(ctx context.Context, db *database.Mongo) error {
	if err := EnsureUserIndexes(ctx, db); err != nil {
		return err
	}
	return EnsureOAuthIndexes(ctx, db)
}
