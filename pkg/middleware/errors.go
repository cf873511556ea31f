package middleware

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"TaskFlow/internal/apperr"
	"TaskFlow/internal/store"
	"TaskFlow/internal/validation"
)

// NewHTTPErrorHandler maps service errors to JSON responses. Anything it
// doesn't recognise is logged and reported as a 500.
func NewHTTPErrorHandler(logger *zap.Logger, v *validation.Validator) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, body := resolveError(err, v)
		if code >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			logger.Error("write error response", zap.Error(err))
		}
	}
}

func resolveError(err error, v *validation.Validator) (int, echo.Map) {
	var (
		verrs validator.ValidationErrors
		aerr  *apperr.Error
		herr  *echo.HTTPError
	)
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest, echo.Map{"error": "Validation failed", "errors": v.Messages(verrs)}
	case errors.As(err, &aerr):
		return aerr.Code, echo.Map{"error": aerr.Message}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, echo.Map{"error": "Not found"}
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict, echo.Map{"error": "Already exists"}
	case errors.Is(err, store.ErrInvalidID):
		return http.StatusBadRequest, echo.Map{"error": "Invalid id"}
	case errors.As(err, &herr):
		msg, ok := herr.Message.(string)
		if !ok {
			msg = fmt.Sprint(herr.Message)
		}
		return herr.Code, echo.Map{"error": msg}
	}
	return http.StatusInternalServerError, echo.Map{"error": http.StatusText(http.StatusInternalServerError)}
}
