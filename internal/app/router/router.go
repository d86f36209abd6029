package router

import (
	"github.com/gin-gonic/gin"

	twofactorhandler "account_backend/internal/feature/twofactor/transport/handler"
	userhandler "account_backend/internal/feature/users/transport/handler"
	platformhandler "account_backend/internal/platform/http/handler"
	jwtmw "account_backend/internal/platform/jwt"
)

// NewRouter builds the HTTP routes. jwtSecret verifies bearer tokens on /users/me.
func NewRouter(users *userhandler.UserHandler, twoFactor *twofactorhandler.TwoFactorHandler,
	health *platformhandler.Health, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// No authentication
	r.GET("/healthz", health.Handle)
	r.HEAD("/healthz", health.Handle)
	r.POST("/users", users.Create)
	r.POST("/login", users.Login)

	// Authenticated user, 2FA status resolved per session
	me := r.Group("/users/me")
	me.Use(jwtmw.AuthRequired(jwtSecret), twoFactor.LoadStatus())
	{
		me.PATCH("", users.UpdateDetails)
		me.PUT("/password", users.UpdatePassword)
		me.POST("/2fa/setup", twoFactor.Setup)
		me.POST("/2fa/verify", twoFactor.Verify)
	}

	return r
}
