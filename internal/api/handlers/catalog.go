// catalog.go — админские обработчики каталога: категории и продукты.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nadovalabs/verify-module/internal/domain/model"
	"github.com/nadovalabs/verify-module/internal/service"
)

// CatalogHandler — обработчик каталога.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler создаёт обработчик каталога.
func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger.With(slog.String("component", "catalog_handler")),
	}
}

// --- DTO ---

type categoryDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toCategoryDTO(c *model.Category) categoryDTO {
	return categoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type productDTO struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Headline    *string `json:"headline"`
	Description *string `json:"description"`
	Dosage      *string `json:"dosage"`
	Purity      *string `json:"purity"`
	Badge       *string `json:"badge"`
	CategoryID  string  `json:"category_id"`
	ImageURL    *string `json:"image_url"`
	Color       *string `json:"color"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toProductDTO(p *model.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Slug:        p.Slug,
		Headline:    p.Headline,
		Description: p.Description,
		Dosage:      p.Dosage,
		Purity:      p.Purity,
		Badge:       p.Badge,
		CategoryID:  p.CategoryID,
		ImageURL:    p.ImageURL,
		Color:       p.Color,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// --- Категории ---

type categoryRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
}

func (r categoryRequest) toService() service.CategoryRequest {
	return service.CategoryRequest{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Color:       r.Color,
		Icon:        r.Icon,
	}
}

// CreateCategory — создание категории.
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.catalog.CreateCategory(r.Context(), req.toService())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryDTO(c))
}

// ListCategories — все категории.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	items := make([]categoryDTO, 0, len(list))
	for _, c := range list {
		items = append(items, toCategoryDTO(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GetCategory — категория по ID.
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTO(c))
}

// UpdateCategory — обновление категории.
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.catalog.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req.toService())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTO(c))
}

// DeleteCategory — удаление категории.
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Продукты ---

type productRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Headline    *string `json:"headline"`
	Description *string `json:"description"`
	Dosage      *string `json:"dosage"`
	Purity      *string `json:"purity"`
	Badge       *string `json:"badge"`
	CategoryID  string  `json:"category_id"`
	ImageURL    *string `json:"image_url"`
	Color       *string `json:"color"`
}

func (r productRequest) toService() service.ProductRequest {
	return service.ProductRequest{
		Code:        r.Code,
		Name:        r.Name,
		Slug:        r.Slug,
		Headline:    r.Headline,
		Description: r.Description,
		Dosage:      r.Dosage,
		Purity:      r.Purity,
		Badge:       r.Badge,
		CategoryID:  r.CategoryID,
		ImageURL:    r.ImageURL,
		Color:       r.Color,
	}
}

// CreateProduct — создание продукта.
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.catalog.CreateProduct(r.Context(), req.toService())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(p))
}

// ListProducts — страница продуктов с фильтром по категории.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	var categoryID *string
	if v := r.URL.Query().Get("category_id"); v != "" {
		categoryID = &v
	}

	list, total, err := h.catalog.ListProducts(r.Context(), categoryID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	items := make([]productDTO, 0, len(list))
	for _, p := range list {
		items = append(items, toProductDTO(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

// GetProduct — продукт по ID.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
}

// UpdateProduct — обновление продукта.
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req.toService())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
}

// DeleteProduct — удаление продукта.
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
