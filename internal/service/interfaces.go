package service

import (
	"context"

	"github.com/qamaits/identity-server/internal/domain"
	"github.com/qamaits/identity-server/internal/mailer"
)

// IdentityService owns the registration and verification state machine.
type IdentityService interface {
	// Register creates an unverified account from the flat field map and
	// dispatches the verification email. The returned channel reports the
	// dispatch outcome; callers may await it or ignore it. The returned
	// user carries the plaintext verify token and code exactly once.
	Register(ctx context.Context, accessLevel string, fields map[string]string) (*domain.User, <-chan error, error)

	// Verify marks the account verified if the token/code pair matches
	// and the 24-hour window has not elapsed.
	Verify(ctx context.Context, username, verifyToken, verifyCode string) (*domain.User, error)
}

// SessionService owns access/refresh token issuance, reuse, and rotation.
type SessionService interface {
	// Login authenticates the user and returns the current access record,
	// minting a fresh one only when none exists or the window elapsed.
	Login(ctx context.Context, username, password string) (*domain.AccessRecord, error)

	// ExchangeRefreshToken rotates the token pair when both presented
	// tokens match the stored record exactly.
	ExchangeRefreshToken(ctx context.Context, username, accessToken, refreshToken string) (*domain.AccessRecord, error)

	// Logout clears the access record when the presented token matches.
	Logout(ctx context.Context, username, accessToken string) error
}

// MailDispatcher is the slice of the mailer the identity service needs.
type MailDispatcher interface {
	Send(msg mailer.Message, link domain.ProviderLink) <-chan error
}
