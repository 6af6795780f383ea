package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qamaits/identity-server/internal/domain"
	"github.com/qamaits/identity-server/internal/mailer"
	"github.com/qamaits/identity-server/internal/repository"
	"github.com/qamaits/identity-server/internal/utils"
)

// verifyTTL is the window in which a fresh account can prove email
// ownership.
const verifyTTL = 24 * time.Hour

// identityService implements IdentityService.
type identityService struct {
	users         repository.UserRepository
	objects       repository.ObjectRepository
	oauth         repository.OAuthRepository
	dispatcher    MailDispatcher
	logger        *zap.Logger
	emailProvider string
	fromAddress   string
}

// NewIdentityService creates a new identity service. emailProvider names
// the stored OAuth link used to deliver verification email.
func NewIdentityService(
	repos *repository.Repositories,
	dispatcher MailDispatcher,
	logger *zap.Logger,
	emailProvider string,
	fromAddress string,
) IdentityService {
	return &identityService{
		users:         repos.User,
		objects:       repos.Object,
		oauth:         repos.OAuth,
		dispatcher:    dispatcher,
		logger:        logger,
		emailProvider: emailProvider,
		fromAddress:   fromAddress,
	}
}

func (s *identityService) Register(ctx context.Context, accessLevel string, fields map[string]string) (*domain.User, <-chan error, error) {
	var required [3]string
	for i, name := range []string{"password", "username", "email"} {
		value, ok := fields[name]
		if !ok || value == "" {
			return nil, nil, domain.ErrInvalidCredentials(fmt.Sprintf("missing %s field", name))
		}
		required[i] = value
	}
	password, username := required[0], required[1]
	email := utils.SanitizeEmail(required[2])

	if !utils.ValidateEmail(email) {
		return nil, nil, domain.ErrInvalidCredentials("this is an invalid email address")
	}

	// Advisory pre-check; the unique indexes remain the real guard.
	existing, err := s.users.FindUser(ctx, username, email)
	if err == nil {
		if existing.Username == username {
			return nil, nil, domain.ErrAlreadyExists("there is already someone with that username")
		}
		return nil, nil, domain.ErrAlreadyExists("there is already an account with that email address")
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		return nil, nil, err
	}

	id, err := s.objects.Insert(ctx, domain.ObjectTypeUser)
	if err != nil {
		return nil, nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, nil, domain.ErrHashingFailure("failed to hash password", err)
	}

	verification, err := newVerification(time.Now().UTC())
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		ID:           id,
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		AccessLevel:  accessLevel,
		Verification: verification,
		FirstName:    optionalField(fields, "first_name"),
		LastName:     optionalField(fields, "last_name"),
		Address:      optionalField(fields, "address"),
		PhoneNumber:  optionalField(fields, "phone_number"),
	}

	if err := s.users.Insert(ctx, user); err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("access_level", accessLevel),
	)

	return user, s.dispatchVerification(ctx, user), nil
}

// dispatchVerification enqueues the verification email. Dispatch problems
// are reported on the returned channel, never as a registration failure.
func (s *identityService) dispatchVerification(ctx context.Context, user *domain.User) <-chan error {
	link, err := s.oauth.FindByName(ctx, s.emailProvider)
	if err != nil {
		s.logger.Warn("verification email skipped: provider link unavailable",
			zap.String("provider", s.emailProvider),
			zap.Error(err),
		)
		result := make(chan error, 1)
		result <- err
		return result
	}

	name := user.Username
	if user.FirstName != nil {
		name = *user.FirstName
	}
	msg := mailer.VerificationMessage(s.fromAddress, user.Email, name, user.Verification.VerifyCode)
	return s.dispatcher.Send(msg, *link)
}

func (s *identityService) Verify(ctx context.Context, username, verifyToken, verifyCode string) (*domain.User, error) {
	user, err := s.users.FindUser(ctx, username, "")
	if err != nil {
		return nil, err
	}

	// The token/code pair is single-use: once verified, further attempts
	// are rejected rather than treated as idempotent success.
	if user.Verification != nil && user.Verification.Verified {
		return nil, domain.ErrInvalidCredentials("invalid verify credentials")
	}

	if !user.Verification.Matches(verifyToken, verifyCode, time.Now().UTC()) {
		return nil, domain.ErrInvalidCredentials("invalid verify credentials")
	}

	now := time.Now().UTC()
	user.Verification.VerifyTime = &now
	user.Verification.Verified = true

	if err := s.users.Update(ctx, username, user); err != nil {
		return nil, err
	}

	s.logger.Info("user verified", zap.String("username", username))
	return user, nil
}

func newVerification(now time.Time) (*domain.Verification, error) {
	token, err := utils.NewToken()
	if err != nil {
		return nil, domain.ErrEncodingFailure("failed to generate verify token", err)
	}
	code, err := utils.NewVerifyCode()
	if err != nil {
		return nil, domain.ErrEncodingFailure("failed to generate verify code", err)
	}
	return &domain.Verification{
		Verified:       false,
		VerifyToken:    token,
		VerifyCode:     code,
		ExpirationTime: now.Add(verifyTTL),
	}, nil
}

func optionalField(fields map[string]string, name string) *string {
	if value, ok := fields[name]; ok && value != "" {
		return &value
	}
	return nil
}
