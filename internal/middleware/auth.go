package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// ServiceAuth returns an Echo middleware that validates a Bearer token
// signed with the shared service secret. Collaborating services present a
// short-lived HS256 token; its subject claim names the caller and is
// stored in the context under "caller" for logging. Wrap the topic and
// catalog endpoints with this middleware when a secret is configured.
func ServiceAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			if claims, ok := tok.Claims.(jwt.MapClaims); ok {
				c.Set("caller", claims["sub"])
			}
			return next(c)
		}
	}
}
