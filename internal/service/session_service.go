package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qamaits/identity-server/internal/domain"
	"github.com/qamaits/identity-server/internal/repository"
	"github.com/qamaits/identity-server/internal/utils"
)

const sessionLockStripes = 64

// sessionService implements SessionService. All access-record mutation is
// serialized per user so concurrent logins or refreshes cannot silently
// invalidate each other's just-issued tokens.
type sessionService struct {
	users  repository.UserRepository
	logger *zap.Logger
	locks  *keyLock
}

// NewSessionService creates a new session service.
func NewSessionService(repos *repository.Repositories, logger *zap.Logger) SessionService {
	return &sessionService{
		users:  repos.User,
		logger: logger,
		locks:  newKeyLock(sessionLockStripes),
	}
}

func (s *sessionService) Login(ctx context.Context, username, password string) (*domain.AccessRecord, error) {
	user, err := s.users.FindUser(ctx, username, "")
	if err != nil {
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials("invalid password")
	}

	if user.Verification == nil || !user.Verification.Verified {
		return nil, domain.ErrInvalidCredentials("account has not yet been verified")
	}

	unlock := s.locks.Lock(user.ID)
	defer unlock()

	// Re-read under the lock so a concurrent mutation is not overwritten.
	user, err = s.users.FindUser(ctx, username, "")
	if err != nil {
		return nil, err
	}

	if !user.AccessRecord.Expired(time.Now().UTC()) {
		return user.AccessRecord, nil
	}

	record, err := newAccessRecord(user.ID)
	if err != nil {
		return nil, err
	}
	user.AccessRecord = record
	if err := s.users.Update(ctx, username, user); err != nil {
		return nil, err
	}

	s.logger.Info("session issued", zap.String("username", username))
	return record, nil
}

func (s *sessionService) ExchangeRefreshToken(ctx context.Context, username, accessToken, refreshToken string) (*domain.AccessRecord, error) {
	user, err := s.users.FindUser(ctx, username, "")
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(user.ID)
	defer unlock()

	user, err = s.users.FindUser(ctx, username, "")
	if err != nil {
		return nil, err
	}

	record := user.AccessRecord
	if record == nil || record.AccessToken != accessToken || record.RefreshToken != refreshToken {
		// Expired-vs-wrong is deliberately not distinguished.
		return nil, domain.ErrNotFound("the specified access token was not found")
	}

	fresh, err := newAccessRecord(user.ID)
	if err != nil {
		return nil, err
	}
	user.AccessRecord = fresh
	if err := s.users.Update(ctx, username, user); err != nil {
		return nil, err
	}

	s.logger.Info("session rotated", zap.String("username", username))
	return fresh, nil
}

func (s *sessionService) Logout(ctx context.Context, username, accessToken string) error {
	user, err := s.users.FindUser(ctx, username, "")
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(user.ID)
	defer unlock()

	user, err = s.users.FindUser(ctx, username, "")
	if err != nil {
		return err
	}

	if user.AccessRecord == nil {
		return domain.ErrInvalidCredentials("invalid username or access token")
	}
	if user.AccessRecord.AccessToken != accessToken {
		return domain.ErrNotFound(fmt.Sprintf("%s has no access record please login", username))
	}

	user.AccessRecord = nil
	if err := s.users.Update(ctx, username, user); err != nil {
		return err
	}

	s.logger.Info("session cleared", zap.String("username", username))
	return nil
}

func newAccessRecord(userID string) (*domain.AccessRecord, error) {
	access, err := utils.NewToken()
	if err != nil {
		return nil, domain.ErrEncodingFailure("failed to generate access token", err)
	}
	refresh, err := utils.NewToken()
	if err != nil {
		return nil, domain.ErrEncodingFailure("failed to generate refresh token", err)
	}

	now := time.Now().UTC()
	return &domain.AccessRecord{
		ID:           uuid.New().String(),
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		CreatedAt:    now,
		ExpiresAt:    now.Add(domain.AccessTokenTTL),
	}, nil
}
