package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/qamaits/identity-server/internal/config"
	"github.com/qamaits/identity-server/internal/handler"
	"github.com/qamaits/identity-server/internal/mailer"
	"github.com/qamaits/identity-server/internal/repository"
	"github.com/qamaits/identity-server/internal/service"
	"github.com/qamaits/identity-server/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra      Infrastructure
	config     *config.Config
	router     *gin.Engine
	server     *http.Server
	dispatcher *mailer.Dispatcher
	oauth      *service.OAuthService
	users      repository.UserRepository
	identity   service.IdentityService
}

func NewApp(infra Infrastructure, cfg *config.Config, providers []service.ProviderConfig) *App {
	repos := repository.NewRepositories(infra.Mongo())

	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	dispatcher := mailer.NewDispatcher(
		mailer.NewHTTPTransport(),
		mailer.NewRedisDeadLetter(infra.Redis()),
		infra.Logger(),
		cfg.Mailer.Workers,
		cfg.Mailer.QueueSize,
	)

	identityService := service.NewIdentityService(
		repos,
		dispatcher,
		infra.Logger(),
		cfg.Email.Provider,
		cfg.Email.FromAddress,
	)
	sessionService := service.NewSessionService(repos, infra.Logger())
	oauthService := service.NewOAuthService(
		repos.OAuth,
		service.NewStateStore(),
		service.NewCodeExchanger(),
		infra.Logger(),
		cfg.Server.RedirectBase(),
		providers,
	)

	authHandler := handler.NewAuthHandler(identityService, sessionService, infra.Logger())
	oauthHandler := handler.NewOAuthHandler(oauthService, infra.Logger())

	router := gin.Default()
	router.Use(otelgin.Middleware("identity-server"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, oauthHandler, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:      infra,
		config:     cfg,
		router:     router,
		server:     srv,
		dispatcher: dispatcher,
		oauth:      oauthService,
		users:      repos.User,
		identity:   identityService,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	oauthHandler *handler.OAuthHandler,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	router.GET("/oauth-validate/:provider", oauthHandler.Validate)

	router.POST("/api/:version/:action",
		handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
		authHandler.Action,
	)
}

// Prepare runs the startup work that needs the store: index creation,
// admin bootstrap, and OAuth provider initialization.
func (a *App) Prepare(ctx context.Context) error {
	if err := repository.EnsureIndexes(ctx, a.infra.Mongo()); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	if err := bootstrapAdmin(ctx, a.users, a.identity, a.config.Admin, a.infra.Logger()); err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	if err := a.oauth.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize oauth providers: %w", err)
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Drain in-flight requests first: handlers may still enqueue mail
	// until the server has stopped, and the dispatcher's dead-letter path
	// needs Redis, so the order is server, dispatcher, infrastructure.
	serverErr := a.server.Shutdown(ctx)

	a.dispatcher.Close()

	err := errors.Join(serverErr, a.infra.Shutdown(ctx))
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
