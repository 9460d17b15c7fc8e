package middleware

import (
	"net/http"

	"ghstats/internal/platform/logger"
	pnet "ghstats/internal/platform/net"
)

// RequestScope copies the request id minted by RequestID into the logger
// context, so lines emitted through logger.C (access log, panic recovery,
// handlers) carry request_id. Mount after RequestID.
func RequestScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rid := pnet.RequestID(r.Context()); rid != "" {
			r = r.WithContext(logger.WithRequest(r.Context(), rid))
		}
		next.ServeHTTP(w, r)
	})
}
