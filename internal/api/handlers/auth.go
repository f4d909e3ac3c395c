// auth.go — обработчики аутентификации администраторов.
// POST /api/v1/admin/auth/login — вход по email/паролю, установка session cookie
// POST /api/v1/admin/auth/logout — очистка cookie
// GET  /api/v1/admin/auth/me — текущая сессия
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/nadovalabs/verify-module/internal/api/errors"
	"github.com/nadovalabs/verify-module/internal/api/middleware"
	"github.com/nadovalabs/verify-module/internal/auth"
	"github.com/nadovalabs/verify-module/internal/service"
)

// AuthHandler — обработчик endpoints аутентификации.
type AuthHandler struct {
	users    *service.AdminUserService
	sessions *auth.SessionManager
	logger   *slog.Logger
}

// NewAuthHandler создаёт обработчик аутентификации.
func NewAuthHandler(users *service.AdminUserService, sessions *auth.SessionManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "auth_handler")),
	}
}

// loginRequest — тело запроса входа.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse — сведения о текущей сессии.
type sessionResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Login — вход по email/паролю.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		apierrors.ValidationError(w, "email и password обязательны")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("Неудачная попытка входа",
			slog.String("email", req.Email),
			slog.String("remote_addr", r.RemoteAddr),
		)
		writeServiceError(w, err)
		return
	}

	session := h.sessions.NewSession(user.ID, user.Email, user.Role)
	if err := h.sessions.SetSessionCookie(w, session); err != nil {
		apierrors.InternalError(w, "ошибка создания сессии")
		return
	}

	h.logger.Info("Вход выполнен",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	writeJSON(w, http.StatusOK, sessionResponse{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
}

// Logout — выход: очистка session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me — сведения о текущей сессии.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		apierrors.Unauthorized(w, "требуется аутентификация")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		UserID: session.UserID,
		Email:  session.Email,
		Role:   session.Role,
	})
}
