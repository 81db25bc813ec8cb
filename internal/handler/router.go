package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sumire/triage/internal/service"
)

// NewRouter builds the echo instance with middleware and all API routes.
func NewRouter(sessions *service.SessionService, upstream HealthChecker, allowedOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = NewAppValidator()

	e.Use(middleware.RequestID())
	e.Use(RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	sessionHandler := NewSessionHandler(sessions)
	healthHandler := NewHealthHandler(upstream)

	e.GET("/health", healthHandler.Check)

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)
	v1.POST("/sessions", sessionHandler.Create)

	s := v1.Group("/session", SessionAuth(sessions))
	s.GET("", sessionHandler.Get)
	s.PATCH("/draft", sessionHandler.UpdateDraft)
	s.POST("/predict", sessionHandler.SubmitPrediction)
	s.POST("/issue", sessionHandler.SubmitCreation)
	s.DELETE("", sessionHandler.Delete)

	return e
}
