package dto

import (
	"time"

	"github.com/qamaits/identity-server/internal/domain"
)

// RegisterResponse is the payload for a successful registration. The
// verify token is surfaced exactly once, here.
type RegisterResponse struct {
	UserID      string `json:"user_id"`
	VerifyToken string `json:"verify_token"`
}

// SessionResponse is the payload for login and exchange.
type SessionResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Expires      time.Time `json:"expires"`
}

// VerifyResponse is the payload for a successful verification.
type VerifyResponse struct {
	VerifyToken string     `json:"verify_token"`
	VerifyTime  *time.Time `json:"verify_time"`
}

// OAuthLinkResponse is the payload for a completed provider link.
type OAuthLinkResponse struct {
	Provider string `json:"provider"`
	LinkID   string `json:"link_id"`
}

// NewRegisterResponse builds the registration payload from a fresh user.
func NewRegisterResponse(user *domain.User) RegisterResponse {
	return RegisterResponse{
		UserID:      user.ID,
		VerifyToken: user.Verification.VerifyToken,
	}
}

// NewSessionResponse builds the session payload from an access record.
func NewSessionResponse(record *domain.AccessRecord) SessionResponse {
	return SessionResponse{
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
		Expires:      record.ExpiresAt,
	}
}

// NewVerifyResponse builds the verification payload from a verified user.
func NewVerifyResponse(user *domain.User) VerifyResponse {
	return VerifyResponse{
		VerifyToken: user.Verification.VerifyToken,
		VerifyTime:  user.Verification.VerifyTime,
	}
}
