package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AllowFunc decides whether a request keyed by client identity may proceed.
type AllowFunc func(key string) bool

// RateLimit throttles requests per client IP. The token-bucket policy itself
// lives with the caller; this middleware only keys and rejects.
func RateLimit(allow AllowFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if allow != nil && !allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": "Too Many Requests",
				})
			}
			return next(c)
		}
	}
}
