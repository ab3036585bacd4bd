// internal/middleware/logging_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMiddlewareFields(t *testing.T) {
	logger, hook := test.NewNullLogger()
	handler := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, http.MethodGet, entry.Data["method"])
	assert.Equal(t, "/ws", entry.Data["path"])
	assert.NotEmpty(t, entry.Data["remote"])
}

func TestWebSocketLifecycleFields(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sessionID, roomID := uuid.New(), uuid.New()

	LogWebSocketConnect(logger, sessionID, "10.0.0.1:4242")
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, sessionID, hook.LastEntry().Data["session"])

	LogWebSocketDisconnect(logger, sessionID, roomID, nil)
	entry := hook.LastEntry()
	assert.Equal(t, sessionID, entry.Data["session"])
	assert.Equal(t, roomID, entry.Data["room"])
	_, hasErr := entry.Data["error"]
	assert.False(t, hasErr)

	// A session that never sat in a room logs no room field.
	LogWebSocketDisconnect(logger, sessionID, uuid.Nil, nil)
	_, hasRoom := hook.LastEntry().Data["room"]
	assert.False(t, hasRoom)
}
