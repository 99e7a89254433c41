package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

// RequestLog tags each request with an X-Request-ID (kept when the
// client sent one) and logs one line when it completes.
func RequestLog(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = ksuid.New().String()
				req.Header.Set(echo.HeaderXRequestID, id)
			}
			res.Header().Set(echo.HeaderXRequestID, id)

			start := time.Now()
			err := next(c)
			if err != nil {
				// let the error handler write the response so the status is final
				c.Error(err)
			}

			fields := []interface{}{
				"request_id", id,
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"bytes", res.Size,
				"duration", time.Since(start).String(),
				"ip", c.RealIP(),
			}
			if uid := UserID(c); uid != "" {
				fields = append(fields, "user_id", uid)
			}
			switch {
			case res.Status >= 500:
				log.Errorw("request", fields...)
			case res.Status >= 400:
				log.Infow("request", fields...)
			default:
				log.Debugw("request", fields...)
			}
			return nil
		}
	}
}
