package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// requestID reads the id stored by RequestID. Empty when that middleware
// is not installed ahead of the caller.
func requestID(c echo.Context) string {
	rid, _ := c.Get("request_id").(string)
	return rid
}

// Logger emits one structured line per request, levelled by status class:
// 5xx and handler errors log at error, 4xx at warn, everything else info.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			var evt *zerolog.Event
			switch {
			case err != nil || res.Status >= 500:
				evt = logger.Error().Err(err)
			case res.Status >= 400:
				evt = logger.Warn()
			default:
				evt = logger.Info()
			}

			evt = evt.
				Str("request_id", requestID(c)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Int64("bytes_out", res.Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())
			if q := req.URL.RawQuery; q != "" {
				evt = evt.Str("query", q)
			}
			evt.Msg("request")

			return err
		}
	}
}
