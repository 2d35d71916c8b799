package middleware

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/mnehpets/queryserve/awsquery"
	"github.com/mnehpets/queryserve/routing"
)

// Recover returns a layer that converts a panicking handle into an internal
// failure response instead of tearing down the connection goroutine.
// http.ErrAbortHandler is re-panicked so the transport's own abort pathway
// keeps working.
func Recover(logger *zap.Logger) Layer {
	return func(next routing.Service) routing.Service {
		return routing.ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				logger.Error("panic in operation handle",
					zap.String("action", r.URL.Query().Get("Action")),
					zap.Any("panic", rvr),
					zap.Stack("stack"),
				)
				awsquery.WriteError(w, r, awsquery.NewInternalFailure(fmt.Errorf("panic: %v", rvr)))
			}()

			next.Call(w, r)
		})
	}
}
