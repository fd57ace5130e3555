package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"schoolgle/internal/httputil"
)

// startedWriter notes whether any part of the response has gone out
type startedWriter struct {
	http.ResponseWriter
	started bool
}

func (w *startedWriter) WriteHeader(code int) {
	w.started = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *startedWriter) Write(b []byte) (int, error) {
	w.started = true
	return w.ResponseWriter.Write(b)
}

func (w *startedWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Recovery turns a handler panic into a 500 error envelope. Once the handler
// has started writing, the status can no longer change, so the connection is
// aborted instead of appending an error body to a half-sent pack.
// http.ErrAbortHandler is re-raised untouched.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &startedWriter{ResponseWriter: w}
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				logger.Error("panic recovered",
					"error", v,
					"method", r.Method,
					"path", r.URL.Path,
					"response_started", sw.started,
					"stack", string(debug.Stack()),
				)

				if sw.started {
					panic(http.ErrAbortHandler)
				}
				httputil.RespondError(w, http.StatusInternalServerError, httputil.CodeInternal, "internal server error", nil)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
