package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"ai-ragchat-be/internal/dto"
	"ai-ragchat-be/internal/pkg/serverutils"
	"ai-ragchat-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newTestApp(t *testing.T) (*fiber.App, store.ContextStore) {
	t.Helper()
	ctxStore := store.NewMemoryStore(store.Config{
		SessionTTL:    time.Minute,
		SweepInterval: time.Minute,
	}, nopLogger{})
	t.Cleanup(func() { _ = ctxStore.Close() })

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewSessionController(ctxStore, nopLogger{}).RegisterRoutes(api)
	return app, ctxStore
}

func decode[T any](t *testing.T, body io.Reader) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestSessionEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	// GET without an identifier issues a fresh one.
	resp, err := app.Test(httptest.NewRequest("GET", "/api/session/v1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	status := decode[dto.SessionStatusResponse](t, resp.Body)
	assert.False(t, status.Exists)
	assert.True(t, store.ValidateSessionID(status.SessionID))

	// POST creates a session.
	resp, err = app.Test(httptest.NewRequest("POST", "/api/session/v1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode[dto.CreateContextSessionResponse](t, resp.Body)
	require.NotEmpty(t, created.SessionID)

	// GET with the identifier reports existence and stats.
	resp, err = app.Test(httptest.NewRequest("GET", "/api/session/v1?session_id="+created.SessionID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	status = decode[dto.SessionStatusResponse](t, resp.Body)
	assert.True(t, status.Exists)
	require.NotNil(t, status.Stats)
	assert.Zero(t, status.Stats.Documents)

	// DELETE with action=delete removes it; success reflects existence.
	resp, err = app.Test(httptest.NewRequest("DELETE", "/api/session/v1?session_id="+created.SessionID+"&action=delete", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	action := decode[dto.SessionActionResponse](t, resp.Body)
	assert.True(t, action.Success)

	// Deleting again is still HTTP 200, but success is false.
	resp, err = app.Test(httptest.NewRequest("DELETE", "/api/session/v1?session_id="+created.SessionID+"&action=delete", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	action = decode[dto.SessionActionResponse](t, resp.Body)
	assert.False(t, action.Success)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/session/v1?session_id="+created.SessionID, nil))
	require.NoError(t, err)
	status = decode[dto.SessionStatusResponse](t, resp.Body)
	assert.False(t, status.Exists)
}

func TestSessionEndpointValidation(t *testing.T) {
	app, _ := newTestApp(t)

	cases := []struct {
		name   string
		method string
		target string
	}{
		{"malformed id on GET", "GET", "/api/session/v1?session_id=bad%20id%21"},
		{"malformed id on DELETE", "DELETE", "/api/session/v1?session_id=.."},
		{"missing id on DELETE", "DELETE", "/api/session/v1"},
		{"unknown action", "DELETE", "/api/session/v1?session_id=valid-id&action=drop"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tc.method, tc.target, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSessionClearKeepsRecord(t *testing.T) {
	app, ctxStore := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/session/v1", nil))
	require.NoError(t, err)
	created := decode[dto.CreateContextSessionResponse](t, resp.Body)

	_, err = ctxStore.AddDocuments(context.Background(), created.SessionID, "standards", "col-1", []store.SearchResult{
		{FileID: "f1", FileName: "a.pdf", Content: "aaaa", Score: 0.9, Source: store.SourceChunks},
	}, "q")
	require.NoError(t, err)

	// Default action is clear.
	resp, err = app.Test(httptest.NewRequest("DELETE", "/api/session/v1?session_id="+created.SessionID, nil))
	require.NoError(t, err)
	action := decode[dto.SessionActionResponse](t, resp.Body)
	assert.True(t, action.Success)
	assert.Equal(t, "clear", action.Action)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/session/v1?session_id="+created.SessionID, nil))
	require.NoError(t, err)
	status := decode[dto.SessionStatusResponse](t, resp.Body)
	assert.True(t, status.Exists, "clear must keep the session record")
	require.NotNil(t, status.Stats)
	assert.Zero(t, status.Stats.Documents)
}

func TestStoreStatsEndpoint(t *testing.T) {
	app, ctxStore := newTestApp(t)

	_, err := ctxStore.AddDocuments(context.Background(), "s1", "standards", "col-1", []store.SearchResult{
		{FileID: "f1", FileName: "a.pdf", Content: "aaaa", Score: 0.9, Source: store.SourceChunks},
	}, "q")
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/session/v1/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	stats := decode[dto.StoreStatsResponse](t, resp.Body)
	assert.Equal(t, "memory", stats.Backend)
	assert.Equal(t, 1, stats.Sessions)
	assert.Equal(t, 1, stats.Documents)
}
