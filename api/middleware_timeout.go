package api

import (
	"net/http"
	"time"
)

const timeoutBody = `{"error": "Request timeout", "message": "The request took too long to process"}`

// TimeoutMiddleware cancels the request context after timeout and answers 503 with a
// JSON body. Do not wrap websocket routes; the timeout writer cannot be hijacked.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
