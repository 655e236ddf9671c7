// Package observability provides request logging for the web service.
package observability

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/louisbranch/bookstore/internal/platform/requestctx"
)

// RequestLogger logs one line per request with status, size and latency, plus
// the session and principal the request ended with when session handling ran.
func RequestLogger(logger *log.Entry) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w}
			ctx, identity := requestctx.WithIdentity(r.Context())
			next.ServeHTTP(recorder, r.WithContext(ctx))

			status := recorder.status
			if status == 0 {
				status = http.StatusOK
			}
			fields := log.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     status,
				"bytes":      recorder.bytes,
				"latency":    time.Since(start).String(),
				"request_id": r.Header.Get("X-Request-ID"),
			}
			if identity.SessionID != "" {
				fields["session_id"] = identity.SessionID
			}
			if identity.Principal != "" {
				fields["principal"] = identity.Principal
			}
			logger.WithFields(fields).Info("http request")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
