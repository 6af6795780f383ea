package repository

import (
	"context"

	"github.com/qamaits/identity-server/internal/domain"
)

// Collection names used by the credential store.
const (
	CollectionUsers   = "users"
	CollectionObjects = "objects"
	CollectionOAuth   = "oauth"
)

// UserRepository defines typed access to the users collection.
type UserRepository interface {
	// FindUser looks a user up by username. When email is non-empty the
	// match is an OR over username and email, which backs the registration
	// uniqueness check. A miss is reported as a NotFound domain error, not
	// an empty success.
	FindUser(ctx context.Context, username, email string) (*domain.User, error)

	// Insert writes a new user. The store's unique indexes on username and
	// email are the authoritative source of AlreadyExists.
	Insert(ctx context.Context, user *domain.User) error

	// Update replaces the user document keyed by username.
	Update(ctx context.Context, username string, user *domain.User) error

	// Any returns true if at least one user exists.
	Any(ctx context.Context) (bool, error)
}

// ObjectRepository mints globally-unique object ids.
type ObjectRepository interface {
	// Insert allocates a fresh id, persists the object record for the
	// given type, and returns the id.
	Insert(ctx context.Context, objType string) (string, error)
}

// OAuthRepository defines typed access to the oauth collection.
type OAuthRepository interface {
	// FindByName fetches a provider link by provider name.
	FindByName(ctx context.Context, name string) (*domain.ProviderLink, error)

	// Insert allocates an object id for the link, persists it, and
	// returns the id.
	Insert(ctx context.Context, link *domain.ProviderLink) (string, error)
}
