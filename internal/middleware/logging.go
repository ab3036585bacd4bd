// internal/middleware/logging.go
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LogMiddleware is an HTTP middleware that logs incoming requests using Logrus.
// Logs the method, path, and duration of each request.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path
			method := r.Method

			next.ServeHTTP(w, r)

			duration := time.Since(start)
			logger.WithFields(logrus.Fields{
				"method":   method,
				"path":     path,
				"duration": duration,
				"remote":   r.RemoteAddr,
			}).Info("HTTP Request")
		})
	}
}

// LogWebSocketConnect marks a guest session's connection being accepted.
func LogWebSocketConnect(logger *logrus.Logger, sessionID uuid.UUID, remoteAddr string) {
	logger.WithFields(logrus.Fields{
		"session": sessionID,
		"remote":  remoteAddr,
	}).Info("WebSocket connected")
}

// LogWebSocketDisconnect marks a session's connection closing. roomID is the
// room the session occupied at disconnect time, uuid.Nil if it was not seated.
func LogWebSocketDisconnect(logger *logrus.Logger, sessionID, roomID uuid.UUID, err error) {
	fields := logrus.Fields{
		"session": sessionID,
	}
	if roomID != uuid.Nil {
		fields["room"] = roomID
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("WebSocket disconnected")
}
