package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qamaits/identity-server/internal/domain"
	"github.com/qamaits/identity-server/internal/repository"
)

// Walks the whole account lifecycle over one shared store: register,
// verify, login, exchange, logout, and login again.
func TestAccountLifecycle(t *testing.T) {
	ctx := context.Background()

	users := newFakeUserRepo()
	oauth := newFakeOAuthRepo()
	oauth.links[testProvider] = &domain.ProviderLink{
		Name:         testProvider,
		AccessToken:  "provider-access-token",
		SendEndpoint: "https://mail.example.com/send",
	}
	repos := &repository.Repositories{User: users, Object: &fakeObjectRepo{}, OAuth: oauth}

	identity := NewIdentityService(repos, &fakeDispatcher{}, zap.NewNop(), testProvider, "no-reply@example.com")
	sessions := NewSessionService(repos, zap.NewNop())

	user, mailResult, err := identity.Register(ctx, domain.AccessLevelSubscriber, registerFields())
	require.NoError(t, err)
	require.NoError(t, <-mailResult)

	// Login before verification is refused.
	_, err = sessions.Login(ctx, user.Username, "hunter22")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidCredentials))

	_, err = identity.Verify(ctx, user.Username, user.Verification.VerifyToken, user.Verification.VerifyCode)
	require.NoError(t, err)

	record, err := sessions.Login(ctx, user.Username, "hunter22")
	require.NoError(t, err)

	rotated, err := sessions.ExchangeRefreshToken(ctx, user.Username, record.AccessToken, record.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, record.AccessToken, rotated.AccessToken)

	require.NoError(t, sessions.Logout(ctx, user.Username, rotated.AccessToken))

	fresh, err := sessions.Login(ctx, user.Username, "hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, rotated.AccessToken, fresh.AccessToken)
}
