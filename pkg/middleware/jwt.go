package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"TaskFlow/internal/apperr"
	"TaskFlow/internal/auth"
)

var (
	errMissingToken = apperr.Unauthorized("Missing token")
	errInvalidToken = apperr.Unauthorized("Invalid token")
)

// JWTMiddleware authenticates the bearer token and stores its claims under
// auth.ContextKey.
func JWTMiddleware(tokens *auth.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return errMissingToken
			}
			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if tokenString == "" {
				return errMissingToken
			}

			claims, err := tokens.ValidateJWT(tokenString)
			if err != nil {
				return errInvalidToken
			}
			c.Set(auth.ContextKey, claims)
			return next(c)
		}
	}
}
