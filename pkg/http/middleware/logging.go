package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogging writes one access-log line per request: method, path,
// client, response status, bytes written and latency.
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			req := c.Request()
			res := c.Response()
			log.Printf("%s %s from=%s status=%d bytes=%d took=%s",
				req.Method,
				req.URL.Path,
				c.RealIP(),
				res.Status,
				res.Size,
				time.Since(start),
			)
			return err
		}
	}
}
