package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/qamaits/identity-server/internal/config"
	"github.com/qamaits/identity-server/internal/domain"
	"github.com/qamaits/identity-server/internal/repository"
	"github.com/qamaits/identity-server/internal/service"
)

// bootstrapAdmin seeds the first administrator when the user store is
// empty. The verify token and code are logged for the operator since no
// email provider may be linked yet.
func bootstrapAdmin(
	ctx context.Context,
	users repository.UserRepository,
	identity service.IdentityService,
	cfg config.AdminConfig,
	logger *zap.Logger,
) error {
	any, err := users.Any(ctx)
	if err != nil {
		return err
	}
	if any {
		return nil
	}

	if cfg.Password == "" || cfg.Email == "" {
		logger.Warn("user store is empty but no admin credentials are configured, skipping bootstrap")
		return nil
	}

	admin, _, err := identity.Register(ctx, domain.AccessLevelAdministrator, map[string]string{
		"username": cfg.Username,
		"password": cfg.Password,
		"email":    cfg.Email,
	})
	if err != nil {
		return err
	}

	logger.Info("bootstrapped administrator account",
		zap.String("user_id", admin.ID),
		zap.String("username", admin.Username),
		zap.String("verify_token", admin.Verification.VerifyToken),
		zap.String("verify_code", admin.Verification.VerifyCode),
	)
	return nil
}
