package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sumire/issuetracker/internal/service"
)

// RouterConfig holds the dependencies of the HTTP surface.
type RouterConfig struct {
	Issues         *service.IssueService
	Store          Pinger
	Metrics        *Metrics // nil disables /metrics
	AllowedOrigins []string
}

// NewRouter builds the echo instance serving the issue API, /health and
// /metrics.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Use(RequestID())
	e.Use(RequestLogger())
	if cfg.Metrics != nil {
		e.Use(cfg.Metrics.Middleware())
	}
	e.Use(middleware.Recover())
	e.Use(SecureHeaders())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderAccept, echo.HeaderContentType},
		ExposeHeaders: []string{echo.HeaderXRequestID},
		MaxAge:        300,
	}))

	e.GET("/health", NewHealthHandler(cfg.Store).Check)
	if cfg.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(cfg.Metrics.Handler()))
	}

	issues := NewIssueHandler(cfg.Issues)
	api := e.Group("/api/issues")
	api.GET("/:project", issues.List)
	api.POST("/:project", issues.Create)
	api.PUT("/:project", issues.Update)
	api.DELETE("/:project", issues.Delete)

	return e
}
