package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/smart-harvest/internal/app/domain/access"
	"github.com/FACorreiaa/smart-harvest/internal/app/domain/session"
	"github.com/FACorreiaa/smart-harvest/internal/pkg/device"
	"github.com/FACorreiaa/smart-harvest/internal/pkg/kv"
)

const cookieName = "device_token"

type testEnv struct {
	router  *gin.Engine
	issuer  *device.Issuer
	backend *kv.MemoryBackend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		issuer:  device.NewIssuer("test-secret", time.Hour),
		backend: kv.NewMemoryBackend(),
	}

	r := gin.New()
	r.Use(SecurityMiddleware())
	r.Use(DeviceMiddleware(DeviceConfig{Issuer: env.issuer, CookieName: cookieName, Logger: zap.NewNop()}))
	r.Use(SessionMiddleware(env.backend, zap.NewNop()))
	r.Use(GuardMiddleware(access.DefaultTable))

	ok := func(c *gin.Context) {
		name := ""
		if sess := CurrentSession(c); sess != nil {
			name = sess.DisplayName
		}
		c.String(http.StatusOK, "ok:"+name)
	}
	for _, p := range []string{"/login", "/farm-user/login", "/dashboard", "/owner-dashboard", "/fertilizer-plans", "/tasks", "/beds/:bedId", "/healthz"} {
		r.GET(p, ok)
	}
	env.router = r
	return env
}

// loginAs persists a session for a new device and returns its cookie.
func (e *testEnv) loginAs(t *testing.T, username string) *http.Cookie {
	t.Helper()
	id := uuid.New()
	_, err := session.NewStore(e.backend.ForDevice(id), zap.NewNop()).Login(context.Background(), username, "pw")
	require.NoError(t, err)

	token, err := e.issuer.Issue(id)
	require.NoError(t, err)
	return &http.Cookie{Name: cookieName, Value: token}
}

func (e *testEnv) get(path string, cookie *http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestDeviceMiddleware_IssuesCookie(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/login", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	id, err := env.issuer.Parse(cookies[0].Value)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
}

func TestDeviceMiddleware_KeepsValidCookie(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAs(t, "alice")

	w := env.get("/dashboard", cookie, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok:alice", w.Body.String())
	assert.Empty(t, w.Result().Cookies())
}

func TestDeviceMiddleware_ReplacesForgedCookie(t *testing.T) {
	env := newTestEnv(t)
	forged, err := device.NewIssuer("other-secret", time.Hour).Issue(uuid.New())
	require.NoError(t, err)

	w := env.get("/login", &http.Cookie{Name: cookieName, Value: forged}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, w.Result().Cookies(), 1)
	assert.NotEqual(t, forged, w.Result().Cookies()[0].Value)
}

func TestGuardMiddleware(t *testing.T) {
	env := newTestEnv(t)
	owner := env.loginAs(t, "owner@farm.com")
	alice := env.loginAs(t, "alice")

	tests := []struct {
		name     string
		path     string
		cookie   *http.Cookie
		status   int
		location string
	}{
		{"anonymous protected", "/dashboard", nil, http.StatusFound, "/farm-user/login?from=%2Fdashboard"},
		{"anonymous bed keeps path", "/beds/bed-001", nil, http.StatusFound, "/farm-user/login?from=%2Fbeds%2Fbed-001"},
		{"anonymous public", "/farm-user/login", nil, http.StatusOK, ""},
		{"anonymous unguarded", "/healthz", nil, http.StatusOK, ""},
		{"owner dashboard swap", "/dashboard", owner, http.StatusFound, "/owner-dashboard"},
		{"owner owner dashboard", "/owner-dashboard", owner, http.StatusOK, ""},
		{"owner fertilizer", "/fertilizer-plans", owner, http.StatusFound, "/owner-dashboard"},
		{"supervisor owner dashboard", "/owner-dashboard", alice, http.StatusFound, "/dashboard"},
		{"supervisor fertilizer", "/fertilizer-plans", alice, http.StatusOK, ""},
		{"supervisor tasks", "/tasks?status=pending", alice, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.get(tt.path, tt.cookie, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
		})
	}
}

func TestGuardMiddleware_HTMX(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/tasks", nil, map[string]string{"HX-Request": "true"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/farm-user/login?from=%2Ftasks", w.Header().Get("HX-Redirect"))
	assert.Empty(t, w.Header().Get("Location"))

	alice := env.loginAs(t, "alice")
	w = env.get("/owner-dashboard", alice, map[string]string{"HX-Request": "true"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("HX-Redirect"))
}

func TestGuardMiddleware_CorruptSessionIsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.New()
	require.NoError(t, env.backend.ForDevice(id).Set(context.Background(), session.StorageKey, `{"username":"alice","role":"owner"}`))
	token, err := env.issuer.Issue(id)
	require.NoError(t, err)

	w := env.get("/owner-dashboard", &http.Cookie{Name: cookieName, Value: token}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/farm-user/login?from=%2Fowner-dashboard", w.Header().Get("Location"))

	_, err = env.backend.ForDevice(id).Get(context.Background(), session.StorageKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestSecurityMiddleware(t *testing.T) {
	env := newTestEnv(t)
	w := env.get("/login", nil, nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware())
	r.POST("/farm-user/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/farm-user/login", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestContextAccessors_Empty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uuid.Nil, DeviceID(c))
	assert.Nil(t, SessionStore(c))
	assert.Nil(t, CurrentSession(c))
}
