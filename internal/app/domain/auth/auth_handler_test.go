package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/smart-harvest/internal/app/domain/session"
	"github.com/FACorreiaa/smart-harvest/internal/app/middleware"
	"github.com/FACorreiaa/smart-harvest/internal/app/views"
	"github.com/FACorreiaa/smart-harvest/internal/pkg/device"
	"github.com/FACorreiaa/smart-harvest/internal/pkg/kv"
)

// MockKV is a mock implementation of kv.Store
type MockKV struct {
	mock.Mock
}

func (m *MockKV) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockKV) Set(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MockKV) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// mockBackend hands every device the same mocked store.
type mockBackend struct {
	store *MockKV
}

func (b *mockBackend) ForDevice(uuid.UUID) kv.Store { return b.store }
func (b *mockBackend) Ping(context.Context) error   { return nil }
func (b *mockBackend) Close() error                 { return nil }

const cookieName = "device_token"

func newTestRouter(t *testing.T, backend kv.Backend) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewAuthHandlers(zap.NewNop())
	r := gin.New()
	r.HTMLRender = views.MustRenderer()
	r.Use(middleware.DeviceMiddleware(middleware.DeviceConfig{
		Issuer:     device.NewIssuer("test-secret", time.Hour),
		CookieName: cookieName,
		Logger:     zap.NewNop(),
	}))
	r.Use(middleware.SessionMiddleware(backend, zap.NewNop()))

	for _, p := range []string{"/login", "/farm-user/login", "/client-user/login"} {
		r.GET(p, h.ShowLoginPage)
		r.POST(p, h.LoginHandler)
	}
	r.POST("/logout", h.LogoutHandler)
	r.GET("/session", h.SessionHandler)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values, cookies []*http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getSession(t *testing.T, r *gin.Engine, cookies []*http.Cookie) SessionResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestLoginHandler_Success(t *testing.T) {
	r := newTestRouter(t, kv.NewMemoryBackend())

	w := postForm(r, "/farm-user/login", url.Values{"username": {"owner@farm.com"}, "password": {"pw"}}, nil, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	resp := getSession(t, r, cookies)
	require.True(t, resp.Authenticated)
	assert.Equal(t, "owner@farm.com", resp.User.Username)
	assert.Equal(t, "owner", resp.User.Role)
	assert.Equal(t, "owner", resp.User.Name)
	assert.Equal(t, "Owner", resp.User.RoleLabel)
}

func TestLoginHandler_RedirectsToFrom(t *testing.T) {
	r := newTestRouter(t, kv.NewMemoryBackend())

	tests := []struct {
		from string
		want string
	}{
		{"/tasks?status=pending", "/tasks?status=pending"},
		{"https://evil.example/", "/dashboard"},
		{"//evil.example", "/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			w := postForm(r, "/farm-user/login", url.Values{"username": {"alice"}, "password": {"pw"}, "from": {tt.from}}, nil, nil)
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Location"))
		})
	}
}

func TestLoginHandler_JSONBody(t *testing.T) {
	r := newTestRouter(t, kv.NewMemoryBackend())

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"alice@farm.com","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	resp := getSession(t, r, w.Result().Cookies())
	require.True(t, resp.Authenticated)
	assert.Equal(t, "supervisor", resp.User.Role)
	assert.Equal(t, "alice", resp.User.Name)
}

func TestLoginHandler_HTMX(t *testing.T) {
	r := newTestRouter(t, kv.NewMemoryBackend())

	w := postForm(r, "/farm-user/login", url.Values{"username": {"alice"}, "password": {"pw"}}, nil, map[string]string{"HX-Request": "true"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("HX-Redirect"))
}

func TestLoginHandler_MissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"both empty", url.Values{}},
		{"no password", url.Values{"username": {"alice"}}},
		{"no username", url.Values{"password": {"pw"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kvMock := new(MockKV)
			kvMock.On("Get", mock.Anything, session.StorageKey).Return("", kv.ErrNotFound)
			r := newTestRouter(t, &mockBackend{store: kvMock})

			w := postForm(r, "/farm-user/login", tt.form, nil, map[string]string{"HX-Request": "true"})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "#login-form", w.Header().Get("HX-Retarget"))
			assert.Contains(t, w.Body.String(), "Please enter both username and password")
			kvMock.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestLoginHandler_StorageFailure(t *testing.T) {
	kvMock := new(MockKV)
	kvMock.On("Get", mock.Anything, session.StorageKey).Return("", kv.ErrNotFound)
	kvMock.On("Set", mock.Anything, session.StorageKey, mock.Anything).Return(errors.New("redis down"))
	r := newTestRouter(t, &mockBackend{store: kvMock})

	w := postForm(r, "/farm-user/login", url.Values{"username": {"alice"}, "password": {"pw"}}, nil, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "redis down")
	// the error page must not present alice as signed in
	assert.NotContains(t, w.Body.String(), `class="user-name"`)
	assert.NotContains(t, w.Body.String(), `action="/logout"`)
	kvMock.AssertExpectations(t)
}

func TestLogoutHandler(t *testing.T) {
	r := newTestRouter(t, kv.NewMemoryBackend())

	w := postForm(r, "/login", url.Values{"username": {"alice"}, "password": {"pw"}}, nil, nil)
	cookies := w.Result().Cookies()
	require.True(t, getSession(t, r, cookies).Authenticated)

	w = postForm(r, "/logout", nil, cookies, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.False(t, getSession(t, r, cookies).Authenticated)

	// logging out twice is harmless
	w = postForm(r, "/logout", nil, cookies, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestLogoutHandler_StorageFailure(t *testing.T) {
	kvMock := new(MockKV)
	kvMock.On("Get", mock.Anything, session.StorageKey).Return("", kv.ErrNotFound)
	kvMock.On("Remove", mock.Anything, session.StorageKey).Return(errors.New("pg down"))
	r := newTestRouter(t, &mockBackend{store: kvMock})

	w := postForm(r, "/logout", nil, nil, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLoginHandler_ClientPortalLanding(t *testing.T) {
	r := newTestRouter(t, kv.NewMemoryBackend())

	w := postForm(r, "/client-user/login", url.Values{"username": {"jane@agro.lk"}, "password": {"pw"}}, nil, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/client-user/dashboard", w.Header().Get("Location"))

	// an explicit return page still wins
	w = postForm(r, "/client-user/login", url.Values{"username": {"jane@agro.lk"}, "password": {"pw"}, "from": {"/client-user/farms/2"}}, nil, nil)
	assert.Equal(t, "/client-user/farms/2", w.Header().Get("Location"))

	w = postForm(r, "/farm-user/login", url.Values{"username": {"jane@agro.lk"}, "password": {"pw"}}, nil, nil)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestShowLoginPage(t *testing.T) {
	r := newTestRouter(t, kv.NewMemoryBackend())

	req := httptest.NewRequest(http.MethodGet, "/client-user/login?from=%2Ftasks", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Client user sign in")
	assert.Contains(t, body, `value="/tasks"`)
	assert.Contains(t, body, `action="/client-user/login"`)
}

func TestSessionHandler_Anonymous(t *testing.T) {
	r := newTestRouter(t, kv.NewMemoryBackend())
	resp := getSession(t, r, nil)
	assert.False(t, resp.Authenticated)
	assert.Nil(t, resp.User)
}
