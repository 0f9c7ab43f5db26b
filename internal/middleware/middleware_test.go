package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pmsworkflow/pms-api/internal/auth"
	apierrors "github.com/pmsworkflow/pms-api/internal/errors"
	"github.com/pmsworkflow/pms-api/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	principal *auth.Principal
	err       error
	gotToken  string
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	s.gotToken = token
	return s.principal, s.err
}

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", handlers...)
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.APIError {
	t.Helper()
	var body apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func ok(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func TestAuthorize(t *testing.T) {
	principal := &auth.Principal{UserID: "u-1", Permissions: auth.NewPermissionSet("add_project")}

	tests := []struct {
		name       string
		header     string
		stub       *stubAuthenticator
		wantStatus int
		wantMsg    string
	}{
		{"missing header", "", &stubAuthenticator{}, http.StatusUnauthorized, apierrors.MsgUnauthorized},
		{"not bearer", "Basic abc", &stubAuthenticator{}, http.StatusUnauthorized, apierrors.MsgUnauthorized},
		{"empty bearer", "Bearer   ", &stubAuthenticator{}, http.StatusUnauthorized, apierrors.MsgUnauthorized},
		{"invalid token", "Bearer bad", &stubAuthenticator{err: errors.New("bad")}, http.StatusUnauthorized, apierrors.MsgInvalidToken},
		{"valid token", "Bearer good", &stubAuthenticator{principal: principal}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(Authorize(tt.stub), ok)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMsg != "" {
				body := decodeError(t, w)
				assert.Equal(t, tt.wantMsg, body.Message)
				assert.Equal(t, "error", body.Status)
				assert.Equal(t, tt.wantStatus, body.StatusCode)
			}
		})
	}
}

func TestAuthorizePassesTokenAndPrincipal(t *testing.T) {
	stub := &stubAuthenticator{principal: &auth.Principal{UserID: "u-1"}}
	var seen auth.Principal
	r := newTestRouter(Authorize(stub), func(c *gin.Context) {
		p, exists := GetPrincipal(c)
		require.True(t, exists)
		seen = p
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "abc.def.ghi", stub.gotToken)
	assert.Equal(t, "u-1", seen.UserID)
}

func TestRequirePermission(t *testing.T) {
	stub := &stubAuthenticator{principal: &auth.Principal{Permissions: auth.NewPermissionSet("get_all_task")}}
	reached := false
	r := newTestRouter(Authorize(stub), RequirePermission("add_task"), func(c *gin.Context) {
		reached = true
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer t")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apierrors.MsgForbidden, decodeError(t, w).Message)
	assert.False(t, reached)

	r = newTestRouter(Authorize(stub), RequirePermission("get_all_task"), ok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermissionWithoutPrincipal(t *testing.T) {
	r := newTestRouter(RequirePermission("add_task"), ok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRouter(RequestLogger(logging.NewWithWriter(&buf, gin.ReleaseMode)), ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"status":200`)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get("X-Request-ID"))
}

func TestRecoveryWritesEnvelope(t *testing.T) {
	r := newTestRouter(Recovery(logging.Discard()), func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apierrors.MsgInternal, decodeError(t, w).Message)
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	r := newTestRouter(Metrics(), ok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))

	now = now.Add(time.Hour)
	rl.Allow("9.9.9.9")
	rl.mu.Lock()
	assert.Len(t, rl.limiters, 1)
	rl.mu.Unlock()
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	r := newTestRouter(rl.Middleware(), ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
