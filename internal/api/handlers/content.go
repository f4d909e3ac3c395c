// content.go — админские обработчики текстовых блоков.
// Блоки адресуются ключом (home.hero.title), а не UUID.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nadovalabs/verify-module/internal/domain/model"
	"github.com/nadovalabs/verify-module/internal/service"
)

// ContentHandler — обработчик текстовых блоков.
type ContentHandler struct {
	content *service.ContentService
	logger  *slog.Logger
}

// NewContentHandler создаёт обработчик текстовых блоков.
func NewContentHandler(content *service.ContentService, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		content: content,
		logger:  logger.With(slog.String("component", "content_handler")),
	}
}

type contentBlockDTO struct {
	ID          string  `json:"id"`
	Key         string  `json:"key"`
	Title       *string `json:"title"`
	Content     string  `json:"content"`
	ContentType string  `json:"content_type"`
	Page        string  `json:"page"`
	Section     *string `json:"section"`
	UpdatedAt   string  `json:"updated_at"`
}

func toContentBlockDTO(b *model.ContentBlock) contentBlockDTO {
	return contentBlockDTO{
		ID:          b.ID,
		Key:         b.Key,
		Title:       b.Title,
		Content:     b.Content,
		ContentType: b.ContentType,
		Page:        b.Page,
		Section:     b.Section,
		UpdatedAt:   b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type contentBlockRequest struct {
	Key         string  `json:"key"`
	Title       *string `json:"title"`
	Content     string  `json:"content"`
	ContentType string  `json:"content_type"`
	Page        string  `json:"page"`
	Section     *string `json:"section"`
}

// Create — создание текстового блока.
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contentBlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := h.content.Create(r.Context(), service.ContentBlockRequest{
		Key:         req.Key,
		Title:       req.Title,
		Content:     req.Content,
		ContentType: req.ContentType,
		Page:        req.Page,
		Section:     req.Section,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContentBlockDTO(b))
}

// List — блоки, опционально отфильтрованные по странице (?page=home).
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	var page *string
	if v := r.URL.Query().Get("page"); v != "" {
		page = &v
	}

	list, err := h.content.List(r.Context(), page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	items := make([]contentBlockDTO, 0, len(list))
	for _, b := range list {
		items = append(items, toContentBlockDTO(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Get — блок по ключу.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.content.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContentBlockDTO(b))
}

// Update — обновление блока по ключу из URL.
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req contentBlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := h.content.Update(r.Context(), service.ContentBlockRequest{
		Key:         chi.URLParam(r, "key"),
		Title:       req.Title,
		Content:     req.Content,
		ContentType: req.ContentType,
		Page:        req.Page,
		Section:     req.Section,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContentBlockDTO(b))
}

// Delete — удаление блока по ключу.
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.content.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
