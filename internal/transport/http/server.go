package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pv-query-router/internal/common/config"
	"pv-query-router/internal/common/logger"
)

// NewServer creates the echo server with middleware and all routes.
func NewServer(cfg config.ServerConfig, deps Dependencies, log logger.Logger) *echo.Echo {
	h := NewHandler(deps, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = h.ErrorHandler
	if cfg.ReadTimeout > 0 {
		e.Server.ReadTimeout = config.GetDuration(cfg.ReadTimeout)
	}
	if cfg.WriteTimeout > 0 {
		e.Server.WriteTimeout = config.GetDuration(cfg.WriteTimeout)
	}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.CORS())
	e.Use(requestLogger(h.logger))
	e.Use(h.Recover)

	h.RegisterRoutes(e)
	return e
}

func requestLogger(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			log.Info("request handled", map[string]interface{}{
				"method":    c.Request().Method,
				"path":      c.Path(),
				"status":    c.Response().Status,
				"duration":  time.Since(start).String(),
				"requestId": c.Response().Header().Get(echo.HeaderXRequestID),
			})
			return nil
		}
	}
}
