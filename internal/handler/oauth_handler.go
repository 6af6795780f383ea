package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qamaits/identity-server/internal/domain"
	"github.com/qamaits/identity-server/internal/dto"
	"github.com/qamaits/identity-server/internal/service"
)

// OAuthHandler serves the provider callback endpoint.
type OAuthHandler struct {
	oauth  *service.OAuthService
	logger *zap.Logger
}

// NewOAuthHandler creates a new OAuth handler.
func NewOAuthHandler(oauth *service.OAuthService, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{oauth: oauth, logger: logger}
}

// Validate handles GET /oauth-validate/:provider, completing the
// authorization-code exchange the operator started out-of-band.
func (h *OAuthHandler) Validate(c *gin.Context) {
	provider := c.Param("provider")
	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, dto.Fail(domain.KindInvalidCredentials.Code(), "missing code or state parameter"))
		return
	}

	id, err := h.oauth.HandleCallback(c.Request.Context(), provider, code, state)
	if err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) {
			c.JSON(statusForKind(derr.Kind), dto.FailFromError(err))
			return
		}
		h.logger.Error("oauth callback failed", zap.String("provider", provider), zap.Error(err))
		c.JSON(http.StatusBadGateway, dto.Fail("exchange_failed", "the provider rejected the authorization code"))
		return
	}

	c.JSON(http.StatusOK, dto.Success(dto.OAuthLinkResponse{Provider: provider, LinkID: id}))
}
