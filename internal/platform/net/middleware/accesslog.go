package middleware

import (
	"net/http"
	"time"

	"ghstats/internal/platform/logger"
)

// AccessLogOptions configures the zerolog access log
type AccessLogOptions struct {
	// Slow promotes requests taking >= Slow to warn level, 0 disables it
	Slow time.Duration
}

// tapWriter records the status and byte count a handler writes
type tapWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (t *tapWriter) WriteHeader(code int) {
	t.status = code
	t.ResponseWriter.WriteHeader(code)
}

func (t *tapWriter) Write(b []byte) (int, error) {
	n, err := t.ResponseWriter.Write(b)
	t.bytes += n
	return n, err
}

// AccessLogZerolog emits one line per request through logger.C, so the line
// carries whatever request_id and run_id the context holds
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tap := &tapWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(tap, r)
			elapsed := time.Since(start)

			log := logger.C(r.Context())
			evt := log.Info()
			if opt.Slow > 0 && elapsed >= opt.Slow {
				evt = log.Warn()
			}
			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", tap.status).
				Int("bytes", tap.bytes).
				Dur("elapsed", elapsed).
				Msg("request done")
		})
	}
}
