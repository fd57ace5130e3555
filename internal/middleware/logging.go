package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// RequestRecorder receives per-request measurements
type RequestRecorder interface {
	RecordHTTPRequest(route, method string, status int, duration time.Duration)
	RequestStarted()
	RequestFinished()
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// RequestLogging logs every request and reports it to recorder, labelled by
// the matched mux pattern so path IDs do not explode metric cardinality.
func RequestLogging(logger *slog.Logger, recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			if recorder != nil {
				recorder.RequestStarted()
				defer recorder.RequestFinished()
			}
			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}

			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", rec.status,
				"duration_ms", duration.Milliseconds(),
			)

			if recorder != nil {
				recorder.RecordHTTPRequest(route, r.Method, rec.status, duration)
			}
		})
	}
}
