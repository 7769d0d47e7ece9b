package http

import (
	"net/http"
	"time"

	applog "cuotas/internal/log"
	"cuotas/internal/middleware/trace"
)

// withMiddleware adds security headers, rate limiting, a request ID and
// request logging to a handler
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := s.clientIP.Extract(r)
		requestID := trace.GenerateRequestID()

		ctx := trace.WithRequestID(r.Context(), requestID)
		ctx = applog.WithLogger(ctx, s.logger.With(applog.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		s.requestLogger.LogStart(ctx, r, clientIP)

		// Rate limit writes
		if r.Method == http.MethodPost && !s.rateLimiter.Allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP, applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		s.headers.Apply(w, r)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.requestLogger.LogEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
