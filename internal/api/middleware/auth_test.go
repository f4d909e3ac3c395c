package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nadovalabs/verify-module/internal/auth"
	"github.com/nadovalabs/verify-module/internal/domain/model"
)

func newSessionManager(t *testing.T, ttl time.Duration) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-secret", false, ttl)
	if err != nil {
		t.Fatalf("NewSessionManager() ошибка: %v", err)
	}
	return sm
}

// okHandler пишет 200 и роль из сессии.
func okHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session == nil {
			t.Error("сессия отсутствует в контексте")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func sessionCookie(t *testing.T, sm *auth.SessionManager, role string) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	if err := sm.SetSessionCookie(w, sm.NewSession("u1", "e@example.com", role)); err != nil {
		t.Fatalf("SetSessionCookie() ошибка: %v", err)
	}
	return w.Result().Cookies()[0]
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("разбор тела ошибки: %v", err)
	}
	return envelope.Error.Code
}

func TestRequireSessionValid(t *testing.T) {
	sm := newSessionManager(t, time.Hour)
	handler := RequireSession(sm)(okHandler(t))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/admin/qr-codes", nil)
	r.AddCookie(sessionCookie(t, sm, model.RoleAdmin))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, ожидается 200", w.Code)
	}
}

func TestRequireSessionMissingCookie(t *testing.T) {
	sm := newSessionManager(t, time.Hour)
	handler := RequireSession(sm)(okHandler(t))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/qr-codes", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, ожидается 401", w.Code)
	}
	if code := errorCode(t, w.Body.Bytes()); code != "UNAUTHORIZED" {
		t.Errorf("code = %q, ожидается UNAUTHORIZED", code)
	}
}

func TestRequireSessionExpired(t *testing.T) {
	sm := newSessionManager(t, -time.Minute)
	handler := RequireSession(sm)(okHandler(t))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/admin/qr-codes", nil)
	r.AddCookie(sessionCookie(t, sm, model.RoleAdmin))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, ожидается 401", w.Code)
	}
}

func TestRequireSessionGarbageCookie(t *testing.T) {
	sm := newSessionManager(t, time.Hour)
	handler := RequireSession(sm)(okHandler(t))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/admin/qr-codes", nil)
	r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "мусор"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, ожидается 401", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	sm := newSessionManager(t, time.Hour)

	tests := []struct {
		role string
		want int
	}{
		{model.RoleAdmin, http.StatusOK},
		{model.RoleEditor, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			handler := RequireSession(sm)(RequireAdmin()(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
			)))

			r := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/qr-codes/x", nil)
			r.AddCookie(sessionCookie(t, sm, tt.role))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("role=%s: status = %d, ожидается %d", tt.role, w.Code, tt.want)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health/live", "/health/live"},
		{"/api/v1/verify/q42", "/api/v1/verify/{code}"},
		{"/api/v1/admin/qr-codes", "/api/v1/admin/qr-codes"},
		{"/api/v1/admin/qr-codes/generate", "/api/v1/admin/qr-codes/generate"},
		{"/api/v1/admin/qr-codes/a1b2c3d4-0000-0000-0000-000000000000", "/api/v1/admin/qr-codes/{id}"},
		{"/api/v1/admin/qr-codes/a1b2c3d4-0000-0000-0000-000000000000/png", "/api/v1/admin/qr-codes/{id}/png"},
		{"/api/v1/admin/content-blocks/home.hero", "/api/v1/admin/content-blocks/{key}"},
		{"/unknown", "/unknown"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, ожидается %q", tt.path, got, tt.want)
		}
	}
}
