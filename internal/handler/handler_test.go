package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/config"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/solver"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.Admin.Username = "admin"
	cfg.Admin.Password = "correct horse"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 1
	cfg.Limits.MaxAtoms = 100
	cfg.Limits.MaxAgents = 10
	cfg.Limits.MaxPopulationSize = 500
	cfg.Limits.MaxGenerationLimit = 1000
	cfg.Redis.OperationExpiration = 1
	cfg.Solver = config.SolverConfig{
		PopulationSize:  100,
		GenerationLimit: 1000,
		StagnationLimit: 200,
		CrossoverRate:   0.9,
		EliteCount:      2,
		Variant:         solver.VariantOptimized,
		CutBoundary:     solver.BoundaryWrap,
	}

	h, err := NewHandler(cfg, nil, nil, nil)
	require.NoError(t, err)
	h.RegisterRoutes()

	return h
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   "admin",
		},
	})
	ss, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return ss
}

func TestLogin(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name        string
		body        string
		wantSuccess bool
		wantMessage string
	}{
		{name: "ok", body: `{"username":"admin","password":"correct horse"}`, wantSuccess: true, wantMessage: "登录成功"},
		{name: "wrong password", body: `{"username":"admin","password":"nope"}`, wantMessage: "用户名不存在或密码错误"},
		{name: "wrong username", body: `{"username":"root","password":"correct horse"}`, wantMessage: "用户名不存在或密码错误"},
		{name: "missing password", body: `{"username":"admin"}`},
		{name: "malformed", body: `{"username":`, wantMessage: "请求体不是合法的 JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Mux.ServeHTTP(rec, req)

			resp := decodeResponse(t, rec)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Message)
			}

			if tt.wantSuccess {
				cookies := rec.Result().Cookies()
				require.Len(t, cookies, 1)
				assert.Equal(t, tokenCookieName, cookies[0].Name)
				assert.True(t, cookies[0].HttpOnly)

				data := resp.Data.(map[string]any)
				assert.Equal(t, cookies[0].Value, data["token"])
			}
		})
	}
}

func TestLogout(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	assert.True(t, decodeResponse(t, rec).Success)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestHandler(t)

	var gotSub any
	protected := h.auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = r.Context().Value(SubCtxKey)
		h.successResponse(w, r, "ok", nil)
	}))

	valid := signToken(t, "test-secret", time.Now().Add(time.Hour))

	tests := []struct {
		name        string
		setup       func(r *http.Request)
		wantSuccess bool
		wantMessage string
	}{
		{name: "no token", setup: func(r *http.Request) {}, wantMessage: "用户未登录"},
		{name: "bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) }, wantSuccess: true},
		{name: "cookie", setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: tokenCookieName, Value: valid}) }, wantSuccess: true},
		{name: "not bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, wantMessage: "用户未登录"},
		{
			name:        "wrong secret",
			setup:       func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+signToken(t, "other", time.Now().Add(time.Hour))) },
			wantMessage: "无效的令牌",
		},
		{
			name:        "expired",
			setup:       func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", time.Now().Add(-time.Hour))) },
			wantMessage: "无效的令牌",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSub = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			resp := decodeResponse(t, rec)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Message)
			}
			if tt.wantSuccess {
				assert.Equal(t, "admin", gotSub)
			} else {
				assert.Nil(t, gotSub)
			}
		})
	}
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/instances", nil)
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "用户未登录", resp.Message)
}

func TestCreateInstanceRejectsInvalidMatrix(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{name: "negative", body: `{"name":"a","matrix":[[1,-1]]}`, wantMessage: "第 1 行第 2 列的估值不能为负数"},
		{name: "too many agents", body: `{"name":"a","matrix":[[1,1,1,1,1,1,1,1,1,1,1]]}`, wantMessage: "第 1 行的参与者数量超过了 10"},
		{name: "agent without atoms", body: `{"name":"a","matrix":[[1,0],[1,0]]}`},
		{name: "ragged", body: `{"name":"a","matrix":[[1,0],[1]]}`},
		{name: "wrong type", body: `{"name":"a","matrix":"x"}`, wantMessage: "字段 matrix 的类型错误"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/instances", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.CreateInstance(rec, req)

			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Message)
			}
		})
	}
}

func TestGenerateInstanceRejectsLargeRequests(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/instances/generate", strings.NewReader(`{"atoms":1000,"agents":2}`))
	rec := httptest.NewRecorder()
	h.GenerateInstance(rec, req)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "原子数量过多", resp.Message)
}

func TestSolveInstanceRejectsInvalidParameters(t *testing.T) {
	h := newTestHandler(t)
	inst := &domain.Instance{ID: 1, Matrix: [][]float64{{1, 0}, {0, 1}}}

	tests := []struct {
		name string
		body string
	}{
		{name: "population too large", body: `{"parameters":{"populationSize":100000}}`},
		{name: "unlimited generations", body: `{"parameters":{"generationLimit":0}}`},
		{name: "crossover rate", body: `{"parameters":{"crossoverRate":1.5}}`},
		{name: "unknown variant", body: `{"parameters":{"variant":"greedy"}}`},
		{name: "bad email", body: `{"notifyEmail":"not-an-email"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/instances/1/solve", strings.NewReader(tt.body))
			req = req.WithContext(context.WithValue(req.Context(), InstanceCtx, inst))
			rec := httptest.NewRecorder()
			h.SolveInstance(rec, req)

			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestCancelFinishedJob(t *testing.T) {
	h := newTestHandler(t)
	job := &domain.SolveJob{Status: domain.JobStatusFinished}

	req := httptest.NewRequest(http.MethodPost, "/jobs/x/cancel", nil)
	req = req.WithContext(context.WithValue(req.Context(), SolveJobCtx, job))
	rec := httptest.NewRecorder()
	h.CancelJob(rec, req)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "任务已结束", resp.Message)
}

func TestInvalidRouteParameters(t *testing.T) {
	h := newTestHandler(t)
	token := signToken(t, "test-secret", time.Now().Add(time.Hour))

	tests := []struct {
		path        string
		wantMessage string
	}{
		{path: "/instances/abc", wantMessage: "实例ID无效"},
		{path: "/jobs/not-a-uuid", wantMessage: "任务ID无效"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			h.Mux.ServeHTTP(rec, req)

			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}
