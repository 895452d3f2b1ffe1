package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/giapha/core/internal/adapters/repository"
	"github.com/giapha/core/internal/application/services"
	"github.com/giapha/core/internal/infrastructure/config"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/infrastructure/metrics"
	"github.com/giapha/core/internal/ports"
)

type stubRemote struct {
	body []byte
	err  error
}

func (s stubRemote) Fetch(context.Context, string) ([]byte, error) {
	return s.body, s.err
}

func newTestServer(t *testing.T, remote ports.RemoteSource) *Server {
	t.Helper()
	return newTestServerWithLogger(t, remote, logger.NewNop())
}

func newTestServerWithLogger(t *testing.T, remote ports.RemoteSource, log *logger.Logger) *Server {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("ADMIN_PASSWORD", "mat-khau")
	t.Setenv("REMOTE_AUTO_SYNC", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	m := metrics.New()
	container := services.NewContainer(cfg, repository.NewMemoryStore(), remote, log, m)
	container.Site.Load(context.Background())

	return New(cfg, log, container, m)
}

func do(t *testing.T, s *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, s *Server) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/v1/auth/login", `{"password":"mat-khau"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ports.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	return resp.AccessToken
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/health/detailed", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "memory", checks["storage"].(map[string]interface{})["driver"])
	assert.EqualValues(t, 6, checks["site"].(map[string]interface{})["members"])
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/v1/auth/login", `{"password":"sai"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mật khẩu không đúng!")

	rec = do(t, s, http.MethodPost, "/api/v1/auth/login", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.NotEmpty(t, login(t, s))
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/v1/tree/members/root/children", ""},
		{http.MethodDelete, "/api/v1/tree/members/m-2-2", ""},
		{http.MethodPatch, "/api/v1/content", `{"clanName":"x"}`},
		{http.MethodPost, "/api/v1/sync", ""},
		{http.MethodGet, "/api/v1/export/backup.json", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			rec = do(t, s, tt.method, tt.path, tt.body, "not-a-token")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	rec := do(t, s, http.MethodGet, "/api/v1/tree", "", "")
	assert.Equal(t, http.StatusOK, rec.Code, "reads stay public")
}

func TestTreeEditing(t *testing.T) {
	s := newTestServer(t, nil)
	token := login(t, s)

	rec := do(t, s, http.MethodPost, "/api/v1/tree/members/m-2-1/children", "", token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var added ports.AddChildResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	require.NotNil(t, added.Child)
	assert.Equal(t, 3, added.Child.Generation)

	rec = do(t, s, http.MethodPut, "/api/v1/tree/members/"+added.Child.ID,
		`{"name":"Lê Văn Mới","isMale":true,"spouses":[{"name":"Trần Thị Hoa"}]}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Lê Văn Mới")

	rec = do(t, s, http.MethodGet, "/api/v1/tree/members/"+added.Child.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Trần Thị Hoa")

	rec = do(t, s, http.MethodDelete, "/api/v1/tree/members/root", "", token)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Không thể xóa Cụ Tổ của dòng họ!")

	rec = do(t, s, http.MethodDelete, "/api/v1/tree/members/nobody", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/v1/tree/members/"+added.Child.ID, "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/tree/members/"+added.Child.ID, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	token := login(t, s)

	rec := do(t, s, http.MethodPut, "/api/v1/news", `{"title":"Họp họ"}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/v1/news", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Họp họ")

	rec = do(t, s, http.MethodPost, "/api/v1/events", `{"title":"Tảo mộ","type":"tiệc"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/events", `{"title":"Tảo mộ","type":"họp mặt","solarDate":"2025-04-04"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/v1/events", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tảo mộ")

	rec = do(t, s, http.MethodDelete, "/api/v1/events/gio-root", "", token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPatch, "/api/v1/content", `{"clanName":"Họ Lê Làng Mới"}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/v1/site", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Họ Lê Làng Mới")
}

func TestSyncFailureLeavesSiteUnchanged(t *testing.T) {
	s := newTestServer(t, stubRemote{err: errors.New("offline")})
	token := login(t, s)

	before := do(t, s, http.MethodGet, "/api/v1/site", "", "").Body.String()

	rec := do(t, s, http.MethodPost, "/api/v1/sync", "", token)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lỗi đồng bộ")

	after := do(t, s, http.MethodGet, "/api/v1/site", "", "").Body.String()
	assert.JSONEq(t, before, after)
}

func TestSyncAppliesRemoteDocument(t *testing.T) {
	doc := `{"familyTree":{"id":"r","name":"Founder","generation":1,"isMale":true},"clanName":"Remote"}`
	s := newTestServer(t, stubRemote{body: []byte(doc)})
	token := login(t, s)

	rec := do(t, s, http.MethodPost, "/api/v1/sync", `{"url":"https://docs.google.com/document/d/abc/edit"}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result ports.SyncResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Applied)
	assert.Equal(t, 1, result.Members)

	rec = do(t, s, http.MethodGet, "/api/v1/tree", "", "")
	assert.Contains(t, rec.Body.String(), "Founder")
}

func TestExports(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{
		"/api/v1/export/tree.json",
		"/api/v1/export/tree.csv",
		"/api/v1/export/tree.png",
		"/api/v1/export/backup.json",
	} {
		rec := do(t, s, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	token := login(t, s)

	rec := do(t, s, http.MethodGet, "/api/v1/export/tree.csv", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\uFEFF"))

	rec = do(t, s, http.MethodGet, "/api/v1/export/tree.json", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id": "root"`)

	rec = do(t, s, http.MethodGet, "/api/v1/export/tree.png", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))

	rec = do(t, s, http.MethodGet, "/api/v1/export/backup.json", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "giapha-backup-")
}

func TestViewSession(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/v1/views", `{"width":1200,"height":800}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var view ports.ViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.NotEmpty(t, view.ID)
	assert.InDelta(t, 0.8, view.State.Viewport.Scale, 1e-9)
	require.NotNil(t, view.Layout)

	base := "/api/v1/views/" + view.ID

	rec = do(t, s, http.MethodPost, base+"/zoom", `{"direction":"in"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.InDelta(t, 0.9, view.State.Viewport.Scale, 1e-9)

	rec = do(t, s, http.MethodPost, base+"/zoom", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPut, base+"/search", `{"query":"phúc"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, base+"/snapshot.png", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, base+"/snapshot.png", "", login(t, s))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = do(t, s, http.MethodDelete, base, "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, base, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	do(t, s, http.MethodGet, "/api/v1/tree", "", "")

	rec := do(t, s, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/v1/tree",status="200"} 1`)
}

func TestRequestLogCarriesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := newTestServerWithLogger(t, nil, &logger.Logger{SugaredLogger: zap.New(core).Sugar()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tree", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	ok := logs.FilterMessage("HTTP request").All()
	require.Len(t, ok, 1)
	assert.Equal(t, "req-123", ok[0].ContextMap()["request_id"])

	rec = do(t, s, http.MethodGet, "/api/v1/tree/members/missing", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	failed := logs.FilterMessage("HTTP request failed").All()
	require.Len(t, failed, 1)
	assert.NotEmpty(t, failed[0].ContextMap()["request_id"])
	assert.NotEmpty(t, failed[0].ContextMap()["error"])
}
