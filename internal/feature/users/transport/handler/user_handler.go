// Package handler provides the HTTP handlers of the users feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"account_backend/internal/feature/users/domain"
	"account_backend/internal/feature/users/transport/http/dto"
	"account_backend/internal/feature/users/usecase"
	"account_backend/internal/platform/authctx"
)

// UserUsecase defines the account operations used by the handler.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type UserUsecase interface {
	CreateUser(ctx context.Context, in usecase.CreateUserInput) (uuid.UUID, error)
	Login(ctx context.Context, email, password string) (string, error)
	UpdateDetails(ctx context.Context, p authctx.Principal, in usecase.UpdateDetailsInput) error
	UpdatePassword(ctx context.Context, p authctx.Principal, desiredPassword string) error
}

// UserHandler serves the account endpoints.
type UserHandler struct {
	users UserUsecase
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users UserUsecase) *UserHandler {
	return &UserHandler{users: users}
}

// Create handles POST /users.
//   - 400 on a malformed body or validation error
//   - 409 when the username or email is taken
//   - 500 on store failures
//   - 201 with the new id on success
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create user validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}

	id, err := h.users.CreateUser(c.Request.Context(), usecase.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	if err != nil {
		slog.Warn("create user failed", "error", err, "username", req.Username, "remote_addr", c.ClientIP())
		writeError(c, err, "failed to create user")
		return
	}

	slog.Info("user created", "user_id", id, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.CreateUserRes{ID: id.String()})
}

// Login handles POST /login. Failures never reveal whether the email exists.
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}

	token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "login failed"})
		return
	}

	c.JSON(http.StatusOK, dto.TokenRes{Token: token})
}

// UpdateDetails handles PATCH /users/me.
func (h *UserHandler) UpdateDetails(c *gin.Context) {
	p := authctx.FromGin(c)
	if !p.Authenticated() {
		c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: "User not authenticated"})
		return
	}

	var req dto.UpdateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update user validation failed", "error", err, "user_id", p.UserID)
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}

	err := h.users.UpdateDetails(c.Request.Context(), p, usecase.UpdateDetailsInput{
		DesiredUsername: req.DesiredUsername,
		DesiredEmail:    req.DesiredEmail,
	})
	if err != nil {
		slog.Warn("update user failed", "error", err, "user_id", p.UserID)
		writeError(c, err, "failed to update user details")
		return
	}

	c.JSON(http.StatusOK, dto.MessageRes{Message: "User details updated successfully"})
}

// UpdatePassword handles PUT /users/me/password.
//   - 401 without an authenticated user
//   - 403 when the session has not passed 2FA
//   - 400 when no new password is given
//   - 500 for any other failure
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	p := authctx.FromGin(c)

	var req dto.PasswordUpdateReq
	// An unreadable body is treated as a missing password; the usecase decides the status.
	_ = c.ShouldBindJSON(&req)

	err := h.users.UpdatePassword(c.Request.Context(), p, req.DesiredPassword)
	var ve *domain.ValidationError
	switch {
	case err == nil:
		slog.Info("password updated", "user_id", p.UserID)
		c.JSON(http.StatusOK, dto.MessageRes{Message: "Password updated successfully"})
	case errors.Is(err, authctx.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: "User not authenticated"})
	case errors.Is(err, domain.ErrTwoFactorRequired):
		c.JSON(http.StatusForbidden, dto.ErrorRes{Error: "2FA is required to update password"})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: ve.Reason})
	default:
		slog.Error("password update failed", "error", err, "user_id", p.UserID)
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "Failed to update password"})
	}
}

// writeError maps usecase errors to status codes. internalMsg is shown for
// unexpected failures so store details stay out of responses.
func writeError(c *gin.Context, err error, internalMsg string) {
	var (
		ce *domain.ConflictError
		ve *domain.ValidationError
	)
	switch {
	case errors.As(err, &ce):
		c.JSON(http.StatusConflict, dto.ErrorRes{Error: ce.Error()})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: ve.Error()})
	case errors.Is(err, authctx.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: "User not authenticated"})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorRes{Error: "user not found"})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: internalMsg})
	}
}
