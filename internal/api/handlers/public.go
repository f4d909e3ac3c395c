// public.go — публичный endpoint верификации.
// GET /api/v1/verify/{code} — разрешение отсканированного QR-кода.
// Единственный endpoint без аутентификации, кроме health и metrics.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nadovalabs/verify-module/internal/service"
)

// PublicHandler — обработчик публичного API.
type PublicHandler struct {
	resolve *service.ResolveService
	logger  *slog.Logger
}

// NewPublicHandler создаёт обработчик публичного API.
func NewPublicHandler(resolve *service.ResolveService, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{
		resolve: resolve,
		logger:  logger.With(slog.String("component", "public_handler")),
	}
}

// Verify — разрешение кода в публичную проекцию.
func (h *PublicHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "code")

	view, err := h.resolve.Resolve(r.Context(), token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}
