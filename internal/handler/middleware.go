package handler

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sumire/triage/internal/domain"
	"github.com/sumire/triage/internal/logger"
	"github.com/sumire/triage/internal/service"
)

const (
	contextKeySession = "session"
)

// RequestLogger logs each HTTP request with structured fields and stores a
// request scoped logger in the request context.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			ctx := logger.With(req.Context(), "request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.Info(ctx, "http request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
			)

			return nil
		}
	}
}

// SessionAuth resolves the Bearer session token and injects the session into
// echo context.
func SessionAuth(sessions *service.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return domain.ErrUnauthorized
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				return domain.ErrUnauthorized
			}

			sess, err := sessions.Authenticate(c.Request().Context(), parts[1])
			if err != nil {
				return err
			}

			c.Set(contextKeySession, sess)
			ctx := logger.With(c.Request().Context(), "session_id", sess.ID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetSession extracts the authenticated session from echo context.
func GetSession(c echo.Context) (*service.Session, bool) {
	sess, ok := c.Get(contextKeySession).(*service.Session)
	return sess, ok
}
