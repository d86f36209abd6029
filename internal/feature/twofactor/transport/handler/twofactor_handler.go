// Package handler provides the HTTP handlers and middleware of the twofactor feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"account_backend/internal/feature/twofactor/domain"
	"account_backend/internal/feature/twofactor/domain/entity"
	"account_backend/internal/feature/twofactor/transport/http/dto"
	userdomain "account_backend/internal/feature/users/domain"
	"account_backend/internal/platform/authctx"
)

// TwoFactorUsecase defines the 2FA operations used by the handler.
type TwoFactorUsecase interface {
	Setup(ctx context.Context, p authctx.Principal) (*entity.Enrollment, error)
	Verify(ctx context.Context, p authctx.Principal, code string) error
	Status(ctx context.Context, sessionID string) (bool, error)
}

// TwoFactorHandler serves the 2FA endpoints.
type TwoFactorHandler struct {
	twoFactor TwoFactorUsecase
}

// NewTwoFactorHandler creates a TwoFactorHandler.
func NewTwoFactorHandler(twoFactor TwoFactorUsecase) *TwoFactorHandler {
	return &TwoFactorHandler{twoFactor: twoFactor}
}

// LoadStatus resolves the 2FA status of the session set by AuthRequired.
// A lookup failure leaves the session unverified and the request continues.
func (h *TwoFactorHandler) LoadStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := authctx.FromGin(c)
		verified, err := h.twoFactor.Status(c.Request.Context(), p.SessionID)
		if err != nil {
			slog.Error("2FA status lookup failed", "error", err, "user_id", p.UserID, "session_id", p.SessionID)
			verified = false
		}
		authctx.SetTwoFactorVerified(c, verified)
		c.Next()
	}
}

// Setup handles POST /users/me/2fa/setup.
func (h *TwoFactorHandler) Setup(c *gin.Context) {
	p := authctx.FromGin(c)
	enr, err := h.twoFactor.Setup(c.Request.Context(), p)
	if err != nil {
		slog.Warn("2FA setup failed", "error", err, "user_id", p.UserID)
		switch {
		case errors.Is(err, authctx.ErrNotAuthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		case errors.Is(err, userdomain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set up 2FA"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.SetupRes{Secret: enr.Secret, OTPAuthURL: enr.URL})
}

// Verify handles POST /users/me/2fa/verify.
func (h *TwoFactorHandler) Verify(c *gin.Context) {
	p := authctx.FromGin(c)
	if !p.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.VerifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a 6 digit code is required"})
		return
	}

	err := h.twoFactor.Verify(c.Request.Context(), p, req.Code)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "2FA verified"})
	case errors.Is(err, domain.ErrInvalidCode):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotEnrolled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrMissingSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	default:
		slog.Error("2FA verification failed", "error", err, "user_id", p.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify 2FA"})
	}
}
