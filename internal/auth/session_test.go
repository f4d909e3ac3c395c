package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	sm, err := NewSessionManager("test-session-secret", false, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager() ошибка: %v", err)
	}
	return sm
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	sm := newTestManager(t)

	data := sm.NewSession("user-1", "admin@nadovalabs.com", "admin")

	encrypted, err := sm.Encrypt(data)
	if err != nil {
		t.Fatalf("Encrypt() ошибка: %v", err)
	}
	if strings.Contains(encrypted, "admin@nadovalabs.com") {
		t.Error("зашифрованная сессия содержит открытый email")
	}

	got, err := sm.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt() ошибка: %v", err)
	}
	if got.UserID != "user-1" || got.Email != "admin@nadovalabs.com" || got.Role != "admin" {
		t.Errorf("Decrypt() = %+v", got)
	}
	if got.IsExpired() {
		t.Error("свежая сессия считается истёкшей")
	}
}

func TestDecryptTampered(t *testing.T) {
	sm := newTestManager(t)

	encrypted, err := sm.Encrypt(sm.NewSession("u", "e@example.com", "editor"))
	if err != nil {
		t.Fatalf("Encrypt() ошибка: %v", err)
	}

	// Порча последнего символа должна ломать аутентификацию GCM
	tampered := encrypted[:len(encrypted)-2] + "xx"
	if _, err := sm.Decrypt(tampered); err == nil {
		t.Error("Decrypt() испорченных данных должен вернуть ошибку")
	}

	if _, err := sm.Decrypt("не-base64!"); err == nil {
		t.Error("Decrypt() мусора должен вернуть ошибку")
	}
}

func TestDecryptWrongKey(t *testing.T) {
	sm1 := newTestManager(t)
	sm2, err := NewSessionManager("другой-ключ", false, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager() ошибка: %v", err)
	}

	encrypted, err := sm1.Encrypt(sm1.NewSession("u", "e@example.com", "admin"))
	if err != nil {
		t.Fatalf("Encrypt() ошибка: %v", err)
	}
	if _, err := sm2.Decrypt(encrypted); err == nil {
		t.Error("Decrypt() чужим ключом должен вернуть ошибку")
	}
}

func TestSessionCookieLifecycle(t *testing.T) {
	sm := newTestManager(t)

	// Установка cookie
	w := httptest.NewRecorder()
	if err := sm.SetSessionCookie(w, sm.NewSession("u1", "e@example.com", "admin")); err != nil {
		t.Fatalf("SetSessionCookie() ошибка: %v", err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookieName {
		t.Fatalf("cookies = %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("cookie без HttpOnly")
	}

	// Чтение из запроса
	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.AddCookie(cookies[0])
	data, err := sm.GetSessionFromRequest(r)
	if err != nil {
		t.Fatalf("GetSessionFromRequest() ошибка: %v", err)
	}
	if data == nil || data.UserID != "u1" {
		t.Errorf("data = %+v", data)
	}

	// Запрос без cookie — nil, nil
	empty := httptest.NewRequest(http.MethodGet, "/admin", nil)
	data, err = sm.GetSessionFromRequest(empty)
	if err != nil || data != nil {
		t.Errorf("без cookie: data=%v err=%v, ожидается nil, nil", data, err)
	}

	// Очистка
	w = httptest.NewRecorder()
	sm.ClearSessionCookie(w)
	cleared := w.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge != -1 {
		t.Errorf("ClearSessionCookie(): %v", cleared)
	}
}

func TestSessionExpiry(t *testing.T) {
	sm, err := NewSessionManager("k", false, -time.Minute)
	if err != nil {
		t.Fatalf("NewSessionManager() ошибка: %v", err)
	}
	if !sm.NewSession("u", "e", "admin").IsExpired() {
		t.Error("сессия с отрицательным ttl должна быть истёкшей")
	}
}
