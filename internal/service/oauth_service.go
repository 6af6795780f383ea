package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/qamaits/identity-server/internal/domain"
	"github.com/qamaits/identity-server/internal/repository"
)

const exchangeTimeout = 15 * time.Second

// ProviderConfig is one configured OAuth provider's static settings.
type ProviderConfig struct {
	Name         string
	ClientID     string
	ClientSecret string
	Scopes       []string
	APIKey       string
	AuthURL      string
	TokenURL     string
	SendEndpoint string
}

func (p ProviderConfig) oauthConfig(redirectBase string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Scopes:       p.Scopes,
		RedirectURL:  fmt.Sprintf("%s/oauth-validate/%s", redirectBase, p.Name),
		Endpoint: oauth2.Endpoint{
			AuthURL:  p.AuthURL,
			TokenURL: p.TokenURL,
		},
	}
}

// CodeExchanger turns an authorization code into provider tokens. Split
// out so tests can run the callback path without a live provider.
type CodeExchanger interface {
	Exchange(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error)
}

type codeExchanger struct{}

// NewCodeExchanger creates the production exchanger.
func NewCodeExchanger() CodeExchanger { return codeExchanger{} }

func (codeExchanger) Exchange(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	return cfg.Exchange(ctx, code)
}

// OAuthService owns per-provider linking: authorization-URL issuance with
// a CSRF state, and the callback exchange that persists provider tokens.
type OAuthService struct {
	oauth        repository.OAuthRepository
	states       *StateStore
	exchanger    CodeExchanger
	logger       *zap.Logger
	redirectBase string
	providers    map[string]ProviderConfig
}

// NewOAuthService creates a new OAuth delegate. The state store is
// injected rather than owned so its lifetime and sharing are explicit.
func NewOAuthService(
	oauth repository.OAuthRepository,
	states *StateStore,
	exchanger CodeExchanger,
	logger *zap.Logger,
	redirectBase string,
	providers []ProviderConfig,
) *OAuthService {
	byName := make(map[string]ProviderConfig, len(providers))
	for _, p := range providers {
		byName[p.Name] = p
	}
	return &OAuthService{
		oauth:        oauth,
		states:       states,
		exchanger:    exchanger,
		logger:       logger,
		redirectBase: redirectBase,
		providers:    byName,
	}
}

// Init inspects every configured provider. Providers with a persisted
// link are already linked; the rest get an authorization URL the operator
// must visit out-of-band, logged here.
func (s *OAuthService) Init(ctx context.Context) error {
	for name, cfg := range s.providers {
		link, err := s.oauth.FindByName(ctx, name)
		if err == nil && link.Linked() {
			s.logger.Info("oauth provider already linked", zap.String("provider", name))
			continue
		}
		if err != nil && !domain.IsKind(err, domain.KindNotFound) {
			return err
		}

		state, err := newState()
		if err != nil {
			return err
		}
		url := cfg.oauthConfig(s.redirectBase).AuthCodeURL(state, oauth2.AccessTypeOffline)
		s.states.Put(name, Pairing{AuthURL: url, State: state})

		s.logger.Info("oauth authorization required",
			zap.String("provider", name),
			zap.String("authorize_url", url),
		)
	}
	return nil
}

// HandleCallback completes the authorization-code exchange for a
// provider. The presented state must equal the last-issued CSRF state; a
// mismatch or exchange failure leaves no record and keeps the pairing
// outstanding.
func (s *OAuthService) HandleCallback(ctx context.Context, provider, code, state string) (string, error) {
	cfg, ok := s.providers[provider]
	if !ok {
		return "", domain.ErrNotFound(fmt.Sprintf("unknown oauth provider %s", provider))
	}

	pairing, ok := s.states.Get(provider)
	if !ok {
		return "", domain.ErrNotFound(fmt.Sprintf("no outstanding authorization for %s", provider))
	}
	if state != pairing.State {
		return "", domain.ErrInvalidCredentials("the CSRF tokens did not match")
	}

	token, err := s.exchanger.Exchange(ctx, cfg.oauthConfig(s.redirectBase), code)
	if err != nil {
		return "", fmt.Errorf("code exchange for %s failed: %w", provider, err)
	}

	link := &domain.ProviderLink{
		Name:         cfg.Name,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       cfg.Scopes,
		APIKey:       cfg.APIKey,
		AuthURL:      cfg.AuthURL,
		TokenURL:     cfg.TokenURL,
		SendEndpoint: cfg.SendEndpoint,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	id, err := s.oauth.Insert(ctx, link)
	if err != nil {
		return "", err
	}

	s.states.Remove(provider)
	s.logger.Info("oauth provider linked",
		zap.String("provider", provider),
		zap.String("link_id", id),
	)
	return id, nil
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", domain.ErrEncodingFailure("failed to generate oauth state", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
