package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/edulink/auth-service/pkg/logging"
)

// RequestLogger attaches a per-request logger to the request context and
// emits one completion line per request.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := base.With(
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"remote_ip", c.RealIP(),
			)
			if rid := c.Request().Header.Get(echo.HeaderXRequestID); rid != "" {
				l = l.With("request_id", rid)
			}

			req := c.Request().WithContext(logging.IntoContext(c.Request().Context(), l))
			c.SetRequest(req)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}
			status := c.Response().Status

			switch {
			case status >= 500:
				l.Error("request completed", "status", status, "duration_ms", time.Since(start).Milliseconds())
			case status >= 400:
				l.Warn("request completed", "status", status, "duration_ms", time.Since(start).Milliseconds())
			default:
				l.Info("request completed", "status", status, "duration_ms", time.Since(start).Milliseconds())
			}
			return nil
		}
	}
}
