package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"TaskFlow/internal/config"
	"TaskFlow/internal/metrics"
	"TaskFlow/internal/validation"
)

// SetupMiddleware installs the global middleware chain, validator and error
// handler on e.
func SetupMiddleware(e *echo.Echo, cfg *config.AppConfig, logger *zap.Logger, m *metrics.Metrics, v *validation.Validator) {
	e.HideBanner = true
	e.HidePort = true
	e.Validator = v
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger, v)

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(RequestLogger(logger, m))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
}
