package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"

	"github.com/qamaits/identity-server/internal/service"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Mongo    MongoConfig    `env:",prefix=MONGO_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	Email    EmailConfig    `env:",prefix=EMAIL_"`
	Admin    AdminConfig    `env:",prefix=ADMIN_"`
	Mailer   MailerConfig   `env:",prefix=MAILER_"`
	Security SecurityConfig `env:",prefix="`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	OAuth    OAuthConfig    `env:",prefix=OAUTH_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	PublicHost   string   `env:"PUBLIC_HOST,default=localhost"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type MongoConfig struct {
	URI    string `env:"URI,default=mongodb://localhost:27017"`
	DBName string `env:"DB,default=identity"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

// EmailConfig names the stored OAuth link used for verification email
// delivery and the sender identity.
type EmailConfig struct {
	Provider    string `env:"PROVIDER,default=gmail"`
	FromAddress string `env:"FROM_ADDRESS,required"`
}

// AdminConfig seeds the first administrator when the store is empty.
type AdminConfig struct {
	Username string `env:"USERNAME,default=admin"`
	Password string `env:"PASSWORD,default="`
	Email    string `env:"EMAIL,default="`
}

type MailerConfig struct {
	Workers   int `env:"WORKERS,default=4"`
	QueueSize int `env:"QUEUE_SIZE,default=128"`
}

type SecurityConfig struct {
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// OAuthConfig lists the provider names to configure; each provider's
// settings load from OAUTH_<NAME>_* variables.
type OAuthConfig struct {
	Providers []string `env:"PROVIDERS,default="`
}

// ProviderEnv holds one provider's OAUTH_<NAME>_* settings.
type ProviderEnv struct {
	ClientID     string `env:"CLIENT_ID,required"`
	ClientSecret string `env:"CLIENT_SECRET,required"`
	Scopes       string `env:"SCOPES,required"`
	APIKey       string `env:"API_KEY,default="`
	AuthURL      string `env:"AUTH_URL,required"`
	TokenURL     string `env:"TOKEN_URL,required"`
	SendEndpoint string `env:"SEND_ENDPOINT,default="`
}

// Address returns the Redis connection address.
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// RedirectBase is the externally visible base URL providers redirect to.
func (s ServerConfig) RedirectBase() string {
	return fmt.Sprintf("https://%s", s.PublicHost)
}

// Load loads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return &config, nil
}

// LoadProviders resolves each configured OAuth provider's settings from
// its OAUTH_<NAME>_* variables.
func LoadProviders(ctx context.Context, cfg *Config) ([]service.ProviderConfig, error) {
	providers := make([]service.ProviderConfig, 0, len(cfg.OAuth.Providers))

	for _, name := range cfg.OAuth.Providers {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var env ProviderEnv
		prefix := fmt.Sprintf("OAUTH_%s_", strings.ToUpper(name))
		lookuper := envconfig.PrefixLookuper(prefix, envconfig.OsLookuper())
		if err := envconfig.ProcessWith(ctx, &envconfig.Config{
			Target:   &env,
			Lookuper: lookuper,
		}); err != nil {
			return nil, fmt.Errorf("failed to load oauth provider %s: %w", name, err)
		}

		providers = append(providers, service.ProviderConfig{
			Name:         name,
			ClientID:     env.ClientID,
			ClientSecret: env.ClientSecret,
			Scopes:       strings.Split(env.Scopes, ","),
			APIKey:       env.APIKey,
			AuthURL:      env.AuthURL,
			TokenURL:     env.TokenURL,
			SendEndpoint: env.SendEndpoint,
		})
	}

	return providers, nil
}
