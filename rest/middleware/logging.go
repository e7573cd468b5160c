package middleware

import (
	"net/http"
	"time"

	"github.com/rediwo/refdata/logger"
)

// Logging writes one line per request. Server errors are logged as warnings.
func Logging(l logger.Logger) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next(rec, r)

			log := l.Info
			if rec.status >= http.StatusInternalServerError {
				log = l.Warn
			}
			log("%s %s -> %d (%d bytes) in %v", r.Method, r.URL.Path, rec.status, rec.bytes, time.Since(start))
		}
	}
}

// Recover turns a panicking handler into a 500 response
func Recover(l logger.Logger) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					l.Error("panic serving %s %s: %v", r.Method, r.URL.Path, p)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"message":"unexpected server error"}`))
				}
			}()
			next(w, r)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Flush keeps streaming responses working through the recorder
func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
