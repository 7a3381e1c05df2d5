package utils

import (
	"net/http"
	"time"

	"github.com/labstack/echo"
	"github.com/rs/zerolog"
)

// RequestLogger logs every HTTP request through the given zerolog
// logger, at a level derived from the response status.
func RequestLogger(logger *zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = res.Header().Get(echo.HeaderXRequestID)
			}

			level := zerolog.DebugLevel
			switch {
			case res.Status >= http.StatusInternalServerError:
				level = zerolog.ErrorLevel
			case res.Status >= http.StatusBadRequest:
				level = zerolog.WarnLevel
			}

			logger.WithLevel(level).
				Int("status", res.Status).
				Dur("duration", time.Since(start)).
				Str("request_id", id).
				Str("method", req.Method).
				Str("path", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Msg("http request")

			return nil
		}
	}
}
