package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edulink/auth-service/pkg/tokens"
)

const bearerPrefix = "Bearer "

// BearerAuth guards routes with an access-domain token check. Verified
// subject and role land in the echo context under "email" and "role".
type BearerAuth struct {
	Codec *tokens.Codec
}

func NewBearerAuth(codec *tokens.Codec) *BearerAuth {
	return &BearerAuth{Codec: codec}
}

func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := m.Codec.Verify(strings.TrimPrefix(header, bearerPrefix), tokens.DomainAccess)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set("email", claims.Subject)
		c.Set("role", claims.Role)
		return next(c)
	}
}
