package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edulink/auth-service/internal/middleware"
)

type Deps struct {
	AuthHandler *AuthHTTP
	Auth        *middleware.BearerAuth
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/social-login", d.AuthHandler.SocialLogin)
	e.POST("/refresh", d.AuthHandler.Refresh)
	// logout stays public: it must answer 200 even for a missing or
	// garbage token
	e.POST("/logout", d.AuthHandler.Logout)
	e.GET("/me", d.AuthHandler.Me)

	private := e.Group("")
	private.Use(d.Auth.RequireAuth)
	private.PUT("/location", d.AuthHandler.UpdateLocation)
}
