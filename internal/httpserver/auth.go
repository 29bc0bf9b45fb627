package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edulink/auth-service/internal/service"
	"github.com/edulink/auth-service/internal/store"
	"github.com/edulink/auth-service/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("register_bad_body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Register(ctx, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, authResponse(res))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string                  `json:"email"`
		Password string                  `json:"password"`
		Location *service.LocationUpdate `json:"location"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_bad_body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password, req.Location)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, authResponse(res))
}

func (h *AuthHTTP) SocialLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_social_login")

	var req struct {
		Credential string                  `json:"credential"`
		Role       string                  `json:"role"`
		Location   *service.LocationUpdate `json:"location"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("social_login_bad_body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.SocialLogin(ctx, req.Credential, req.Role, req.Location)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, authResponse(res))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, authResponse(res))
}

// Logout always answers 200: the operation is advisory and the service
// swallows every failure by contract.
func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	_ = h.Svc.Logout(ctx, bearerToken(c))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.Svc.CurrentUser(ctx, bearerToken(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

func (h *AuthHTTP) UpdateLocation(c echo.Context) error {
	ctx := c.Request().Context()

	email, _ := c.Get("email").(string)
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	var req service.LocationUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.UpdateLocation(ctx, email, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"location": user.Location})
}

func authResponse(res *service.AuthResult) echo.Map {
	return echo.Map{
		"user":         res.User,
		"token":        res.AccessToken,
		"refreshToken": res.RefreshToken,
		"expiresIn":    res.ExpiresIn.Milliseconds(),
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	return strings.TrimPrefix(header, "Bearer ")
}

func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrMissingCredential):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, store.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid credentials")
	case errors.Is(err, service.ErrAccountLocked):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrSocialTokenInvalid),
		errors.Is(err, service.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrStaleRefreshToken),
		errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
