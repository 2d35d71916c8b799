package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mnehpets/queryserve/routing"
)

// Logging returns a layer that logs one structured line per dispatched
// request: action, status, size, duration, request id, and the
// machine-readable error name when the response carried one.
func Logging(logger *zap.Logger) Layer {
	return func(next routing.Service) routing.Service {
		return routing.ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.Call(sw, r)

			fields := []zap.Field{
				zap.String("action", r.URL.Query().Get("Action")),
				zap.String("method", r.Method),
				zap.Int("status", sw.statusOrDefault()),
				zap.Int("size", sw.size),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			}
			if id, ok := routing.RequestID(r.Context()); ok {
				fields = append(fields, zap.String("request_id", id))
			}
			if name, ok := routing.ErrorName(r.Context()); ok {
				fields = append(fields, zap.String("error", name))
			}
			logger.Info("rpc request", fields...)
		})
	}
}
