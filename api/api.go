// Package api holds the HTTP plumbing shared by the handlers: identity, request
// timeouts, metrics and health.
package api

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Pinger reports whether a backing service is reachable
type Pinger func(ctx context.Context) error

// HealthCheckHandler answers liveness probes. With a pinger it also checks storage.
func HealthCheckHandler(ping Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ping != nil {
			ctx, cancel := WithQueryTimeout(r.Context())
			defer cancel()
			if err := ping(ctx); err != nil {
				zap.S().Warnw("health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				io.WriteString(w, `{"alive": false}`)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}
}
