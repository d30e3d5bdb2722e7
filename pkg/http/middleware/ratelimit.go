package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Allower decides whether a request for key may proceed.
type Allower interface {
	Allow(key string) bool
}

// RateLimit rejects requests with 429 once the client IP exceeds its budget.
// onLimited, if set, is called with the route of each rejected request.
func RateLimit(lim Allower, onLimited func(route string)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if lim.Allow(c.RealIP()) {
				return next(c)
			}
			if onLimited != nil {
				onLimited(c.Path())
			}
			return c.JSON(http.StatusTooManyRequests, map[string]any{
				"status":  http.StatusTooManyRequests,
				"message": http.StatusText(http.StatusTooManyRequests),
			})
		}
	}
}
