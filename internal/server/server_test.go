package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/plano/internal/auth"
	"github.com/gosuda/plano/internal/config"
	"github.com/gosuda/plano/internal/server/middleware"
)

const testSecret = "server-test-secret-at-least-32-chars"

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: testSecret, AccessTTL: time.Minute},
		Server: config.ServerConfig{
			Addr:         ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			CORSOrigins:  []string{"http://localhost:5173"},
			RateLimitRPS: 1000,
			RateBurst:    1000,
		},
	}
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := auth.IssueAccessToken(testSecret, uuid.New(), "Ana", middleware.RoleMember, time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := New(ctx, testConfig(), Deps{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_APIRequiresAuth(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := New(ctx, testConfig(), Deps{})

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "tasks", method: http.MethodGet, path: "/api/v1/tasks"},
		{name: "status change", method: http.MethodPatch, path: "/api/v1/task/" + uuid.NewString() + "/status"},
		{name: "websocket", method: http.MethodGet, path: "/ws/status"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestServer_StatusRulesMounted(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := New(ctx, testConfig(), Deps{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status-rules/action_plan", nil)
	req.Header.Set("Authorization", bearer(t))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Kind     string `json:"kind"`
		Statuses []struct {
			Status string `json:"status"`
		} `json:"statuses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "action_plan", body.Kind)
	assert.Len(t, body.Statuses, 5)
}

func TestServer_WebSocketRejectsBadQuery(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := New(ctx, testConfig(), Deps{})

	req := httptest.NewRequest(http.MethodGet, "/ws/status?kind=meeting", nil)
	req.Header.Set("Authorization", bearer(t))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ViewerCannotWrite(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := New(ctx, testConfig(), Deps{})

	token, err := auth.IssueAccessToken(testSecret, uuid.New(), "Vic", middleware.RoleViewer, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/task/"+uuid.NewString()+"/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
