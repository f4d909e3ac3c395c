// auth.go — middleware аутентификации админских запросов.
// Сессия извлекается из зашифрованного cookie и кладётся в контекст запроса;
// обработчики читают её через SessionFromContext, глобального состояния нет.
package middleware

import (
	"context"
	"net/http"

	apierrors "github.com/nadovalabs/verify-module/internal/api/errors"
	"github.com/nadovalabs/verify-module/internal/auth"
	"github.com/nadovalabs/verify-module/internal/domain/model"
)

// contextKey — приватный тип ключей контекста.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionFromContext возвращает сессию из контекста запроса.
// nil — запрос не аутентифицирован.
func SessionFromContext(ctx context.Context) *auth.SessionData {
	s, _ := ctx.Value(sessionContextKey).(*auth.SessionData)
	return s
}

// withSession кладёт сессию в контекст.
func withSession(ctx context.Context, s *auth.SessionData) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// RequireSession возвращает middleware, требующий валидную неистёкшую сессию.
// Невалидный или отсутствующий cookie — 401 в стандартном формате ошибок.
func RequireSession(sm *auth.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sm.GetSessionFromRequest(r)
			if err != nil || session == nil {
				apierrors.Unauthorized(w, "требуется аутентификация")
				return
			}
			if session.IsExpired() {
				sm.ClearSessionCookie(w)
				apierrors.Unauthorized(w, "сессия истекла")
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
		})
	}
}

// RequireAdmin возвращает middleware, требующий роль admin.
// Применяется после RequireSession.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			if session == nil {
				apierrors.Unauthorized(w, "требуется аутентификация")
				return
			}
			if session.Role != model.RoleAdmin {
				apierrors.Forbidden(w, "требуется роль admin")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
