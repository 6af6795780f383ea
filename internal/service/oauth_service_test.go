package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/qamaits/identity-server/internal/domain"
)

type fakeExchanger struct {
	token *oauth2.Token
	err   error
	codes []string
}

func (f *fakeExchanger) Exchange(_ context.Context, _ *oauth2.Config, code string) (*oauth2.Token, error) {
	f.codes = append(f.codes, code)
	if f.err != nil {
		return nil, f.err
	}
	return f.token, nil
}

func testProviderConfig() ProviderConfig {
	return ProviderConfig{
		Name:         "gmail",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scopes:       []string{"https://mail.google.com/"},
		APIKey:       "api-key",
		AuthURL:      "https://accounts.example.com/auth",
		TokenURL:     "https://accounts.example.com/token",
		SendEndpoint: "https://mail.example.com/send",
	}
}

func newOAuthFixture(exchanger CodeExchanger) (*fakeOAuthRepo, *StateStore, *OAuthService) {
	repo := newFakeOAuthRepo()
	states := NewStateStore()
	svc := NewOAuthService(repo, states, exchanger, zap.NewNop(), "https://id.example.com", []ProviderConfig{testProviderConfig()})
	return repo, states, svc
}

func TestInitIssuesPairingForUnlinkedProvider(t *testing.T) {
	_, states, svc := newOAuthFixture(&fakeExchanger{})

	require.NoError(t, svc.Init(context.Background()))

	pairing, ok := states.Get("gmail")
	require.True(t, ok)
	assert.NotEmpty(t, pairing.State)
	assert.Contains(t, pairing.AuthURL, "https://accounts.example.com/auth")
	assert.Contains(t, pairing.AuthURL, pairing.State)
	assert.Contains(t, pairing.AuthURL, "oauth-validate%2Fgmail")
}

func TestInitSkipsLinkedProvider(t *testing.T) {
	repo, states, svc := newOAuthFixture(&fakeExchanger{})
	_, err := repo.Insert(context.Background(), &domain.ProviderLink{
		Name:        "gmail",
		AccessToken: "already-linked",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Init(context.Background()))

	_, ok := states.Get("gmail")
	assert.False(t, ok)
}

func TestCallbackPersistsLink(t *testing.T) {
	exchanger := &fakeExchanger{token: &oauth2.Token{
		AccessToken:  "provider-access",
		RefreshToken: "provider-refresh",
	}}
	repo, states, svc := newOAuthFixture(exchanger)
	require.NoError(t, svc.Init(context.Background()))

	pairing, _ := states.Get("gmail")
	id, err := svc.HandleCallback(context.Background(), "gmail", "auth-code", pairing.State)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, []string{"auth-code"}, exchanger.codes)

	link, err := repo.FindByName(context.Background(), "gmail")
	require.NoError(t, err)
	assert.Equal(t, "provider-access", link.AccessToken)
	assert.Equal(t, "provider-refresh", link.RefreshToken)
	assert.Equal(t, "client-id", link.ClientID)
	assert.Equal(t, "https://mail.example.com/send", link.SendEndpoint)
	assert.True(t, link.Linked())

	// The pairing is consumed.
	_, ok := states.Get("gmail")
	assert.False(t, ok)
}

func TestCallbackRejectsMismatchedState(t *testing.T) {
	exchanger := &fakeExchanger{token: &oauth2.Token{AccessToken: "x"}}
	repo, states, svc := newOAuthFixture(exchanger)
	require.NoError(t, svc.Init(context.Background()))

	_, err := svc.HandleCallback(context.Background(), "gmail", "auth-code", "forged-state")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidCredentials))
	assert.Contains(t, err.Error(), "CSRF tokens did not match")
	assert.Empty(t, exchanger.codes)

	// Nothing was persisted and the pairing survives for a retry.
	_, err = repo.FindByName(context.Background(), "gmail")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	_, ok := states.Get("gmail")
	assert.True(t, ok)
}

func TestCallbackExchangeFailureLeavesNoLink(t *testing.T) {
	exchanger := &fakeExchanger{err: errors.New("provider unavailable")}
	repo, states, svc := newOAuthFixture(exchanger)
	require.NoError(t, svc.Init(context.Background()))

	pairing, _ := states.Get("gmail")
	_, err := svc.HandleCallback(context.Background(), "gmail", "auth-code", pairing.State)
	require.Error(t, err)

	_, err = repo.FindByName(context.Background(), "gmail")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	_, ok := states.Get("gmail")
	assert.True(t, ok)
}

func TestCallbackUnknownProvider(t *testing.T) {
	_, _, svc := newOAuthFixture(&fakeExchanger{})

	_, err := svc.HandleCallback(context.Background(), "unknown", "code", "state")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestCallbackWithoutOutstandingPairing(t *testing.T) {
	_, _, svc := newOAuthFixture(&fakeExchanger{})

	_, err := svc.HandleCallback(context.Background(), "gmail", "code", "state")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestInitReplacesOutstandingPairing(t *testing.T) {
	_, states, svc := newOAuthFixture(&fakeExchanger{})

	require.NoError(t, svc.Init(context.Background()))
	first, _ := states.Get("gmail")

	require.NoError(t, svc.Init(context.Background()))
	second, _ := states.Get("gmail")

	assert.NotEqual(t, first.State, second.State)
}
