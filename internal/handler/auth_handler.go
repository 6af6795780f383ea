package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qamaits/identity-server/internal/domain"
	"github.com/qamaits/identity-server/internal/dto"
	"github.com/qamaits/identity-server/internal/service"
)

// mailResultWait bounds how long register waits for the verification
// email dispatch outcome before answering.
const mailResultWait = 2 * time.Second

// AuthHandler serves the uniform action endpoint.
type AuthHandler struct {
	identity service.IdentityService
	sessions service.SessionService
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(identity service.IdentityService, sessions service.SessionService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		sessions: sessions,
		logger:   logger,
	}
}

// Action dispatches POST /api/:version/:action. Every action takes the
// same request shape and answers with the same envelope.
func (h *AuthHandler) Action(c *gin.Context) {
	if c.Param("version") != "v1" {
		c.JSON(http.StatusNotFound, dto.Fail(domain.KindNotFound.Code(), "unknown api version"))
		return
	}

	var req dto.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail(domain.KindEncodingFailure.Code(), "malformed request body"))
		return
	}
	if req.Data == nil {
		req.Data = map[string]string{}
	}

	switch c.Param("action") {
	case "register":
		h.register(c, req.Data)
	case "login":
		h.login(c, req.Data)
	case "exchange":
		h.exchange(c, req.Data)
	case "verify":
		h.verify(c, req.Data)
	case "logout":
		h.logout(c, req.Data)
	default:
		c.JSON(http.StatusNotFound, dto.Fail(domain.KindNotFound.Code(), "unknown action"))
	}
}

func (h *AuthHandler) register(c *gin.Context, data map[string]string) {
	user, mailResult, err := h.identity.Register(c.Request.Context(), domain.AccessLevelSubscriber, data)
	if err != nil {
		h.fail(c, err)
		return
	}

	payload := dto.NewRegisterResponse(user)

	// The account is durable either way; a failed dispatch only downgrades
	// the status so the client knows to expect no email.
	select {
	case mailErr := <-mailResult:
		if mailErr != nil {
			h.logger.Warn("verification email not dispatched",
				zap.String("username", user.Username),
				zap.Error(mailErr),
			)
			c.JSON(http.StatusCreated, dto.Partial(payload, "mail_dispatch_failed", "account created but the verification email could not be sent"))
			return
		}
	case <-time.After(mailResultWait):
	}

	c.JSON(http.StatusCreated, dto.Success(payload))
}

func (h *AuthHandler) login(c *gin.Context, data map[string]string) {
	username, password := data["username"], data["password"]
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, dto.Fail(domain.KindInvalidCredentials.Code(), "missing username or password field"))
		return
	}

	record, err := h.sessions.Login(c.Request.Context(), username, password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Success(dto.NewSessionResponse(record)))
}

func (h *AuthHandler) exchange(c *gin.Context, data map[string]string) {
	username, access, refresh := data["username"], data["access_token"], data["refresh_token"]
	if username == "" || access == "" || refresh == "" {
		c.JSON(http.StatusBadRequest, dto.Fail(domain.KindInvalidCredentials.Code(), "missing username, access_token or refresh_token field"))
		return
	}

	record, err := h.sessions.ExchangeRefreshToken(c.Request.Context(), username, access, refresh)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Success(dto.NewSessionResponse(record)))
}

func (h *AuthHandler) verify(c *gin.Context, data map[string]string) {
	username, token, code := data["username"], data["verify_token"], data["verify_code"]
	if username == "" || token == "" || code == "" {
		c.JSON(http.StatusBadRequest, dto.Fail(domain.KindInvalidCredentials.Code(), "missing username, verify_token or verify_code field"))
		return
	}

	user, err := h.identity.Verify(c.Request.Context(), username, token, code)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessWithMessage(dto.NewVerifyResponse(user), fmt.Sprintf("%s is now verified", username)))
}

func (h *AuthHandler) logout(c *gin.Context, data map[string]string) {
	username, access := data["username"], data["access_token"]
	if username == "" || access == "" {
		c.JSON(http.StatusBadRequest, dto.Fail(domain.KindInvalidCredentials.Code(), "missing username or access_token field"))
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), username, access); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessMessage(fmt.Sprintf("%s is logged out", username)))
}

func (h *AuthHandler) fail(c *gin.Context, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		h.logger.Error("unclassified handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.FailFromError(err))
		return
	}

	if derr.Kind == domain.KindStoreFailure || derr.Kind == domain.KindEncodingFailure ||
		derr.Kind == domain.KindHashingFailure || derr.Kind == domain.KindConfigFailure {
		h.logger.Error("request failed", zap.String("code", derr.Kind.Code()), zap.Error(err))
	}

	c.JSON(statusForKind(derr.Kind), dto.FailFromError(err))
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidCredentials:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
