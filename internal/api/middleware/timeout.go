package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SelectiveTimeoutConfig bounds request contexts: routes under one of the long
// prefixes get longTimeout, everything else gets defaultTimeout.
func SelectiveTimeoutConfig(defaultTimeout, longTimeout time.Duration, longPrefixes ...string) echo.MiddlewareFunc {
	isLong := func(c echo.Context) bool {
		path := c.Request().URL.Path
		for _, prefix := range longPrefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}

	short := middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Skipper: isLong,
		Timeout: defaultTimeout,
	})
	long := middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Skipper: func(c echo.Context) bool { return !isLong(c) },
		Timeout: longTimeout,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return short(long(next))
	}
}
