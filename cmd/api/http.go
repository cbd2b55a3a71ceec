package main

import (
	"net/http"
	"time"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matching/internal/common/utils"
	"github.com/imadgeboyega/kiekky-matching/internal/events"
)

// healthCheck returns server health status and the event stream backlog
func healthCheck(stream events.Stream) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(startTime).String(),
		}

		length, err := stream.Len(r.Context())
		if err != nil {
			body["status"] = "degraded"
			body["event_stream"] = map[string]interface{}{"name": stream.Name(), "error": err.Error()}
			utils.RespondWithJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		body["event_stream"] = map[string]interface{}{"name": stream.Name(), "length": length}
		utils.RespondWithJSON(w, http.StatusOK, body)
	}
}

// loggingMiddleware logs all requests
func loggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			log.Info("request", map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrapped.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_addr": r.RemoteAddr,
			})
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
