// catalog.go — сервис каталога: категории и продукты.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/nadovalabs/verify-module/internal/domain/model"
	"github.com/nadovalabs/verify-module/internal/repository"
)

// CatalogService — сервис управления категориями и продуктами.
type CatalogService struct {
	catRepo  repository.CategoryRepository
	prodRepo repository.ProductRepository
	logger   *slog.Logger
}

// NewCatalogService создаёт сервис каталога.
func NewCatalogService(
	catRepo repository.CategoryRepository,
	prodRepo repository.ProductRepository,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		catRepo:  catRepo,
		prodRepo: prodRepo,
		logger:   logger.With(slog.String("component", "catalog")),
	}
}

// --- Категории ---

// CategoryRequest — данные создания/обновления категории.
type CategoryRequest struct {
	Name        string
	Slug        string
	Description *string
	Color       *string
	Icon        *string
}

func (r CategoryRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name обязателен", ErrValidation)
	}
	if strings.TrimSpace(r.Slug) == "" {
		return fmt.Errorf("%w: slug обязателен", ErrValidation)
	}
	return nil
}

// CreateCategory создаёт категорию.
func (s *CatalogService) CreateCategory(ctx context.Context, req CategoryRequest) (*model.Category, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	c := &model.Category{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	}

	if err := s.catRepo.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: slug %q уже занят", ErrConflict, req.Slug)
		}
		return nil, fmt.Errorf("создание категории: %w", err)
	}

	s.logger.Info("Категория создана",
		slog.String("category_id", c.ID),
		slog.String("slug", c.Slug),
	)
	return c, nil
}

// GetCategory возвращает категорию по ID.
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	c, err := s.catRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение категории: %w", err)
	}
	return c, nil
}

// ListCategories возвращает все категории.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	list, err := s.catRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка категорий: %w", err)
	}
	return list, nil
}

// UpdateCategory обновляет категорию.
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, req CategoryRequest) (*model.Category, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	c, err := s.catRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение категории для обновления: %w", err)
	}

	c.Name = req.Name
	c.Slug = req.Slug
	c.Description = req.Description
	c.Color = req.Color
	c.Icon = req.Icon

	if err := s.catRepo.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: slug %q уже занят", ErrConflict, req.Slug)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("обновление категории: %w", err)
	}

	return c, nil
}

// DeleteCategory удаляет категорию. Продукты категории должны быть
// удалены или перенесены заранее (FK без каскада).
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.catRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление категории: %w", err)
	}
	s.logger.Info("Категория удалена", slog.String("category_id", id))
	return nil
}

// --- Продукты ---

// ProductRequest — данные создания/обновления продукта.
type ProductRequest struct {
	Code        string
	Name        string
	Slug        string
	Headline    *string
	Description *string
	Dosage      *string
	Purity      *string
	Badge       *string
	CategoryID  string
	ImageURL    *string
	Color       *string
}

func (r ProductRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name обязателен", ErrValidation)
	}
	if strings.TrimSpace(r.Slug) == "" {
		return fmt.Errorf("%w: slug обязателен", ErrValidation)
	}
	if strings.TrimSpace(r.Code) == "" {
		return fmt.Errorf("%w: code обязателен", ErrValidation)
	}
	if strings.TrimSpace(r.CategoryID) == "" {
		return fmt.Errorf("%w: category_id обязателен", ErrValidation)
	}
	return nil
}

// CreateProduct создаёт продукт. Категория должна существовать.
func (s *CatalogService) CreateProduct(ctx context.Context, req ProductRequest) (*model.Product, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	if _, err := s.catRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: категория %s не найдена", ErrValidation, req.CategoryID)
		}
		return nil, fmt.Errorf("проверка категории: %w", err)
	}

	p := &model.Product{
		ID:          uuid.New().String(),
		Code:        req.Code,
		Name:        req.Name,
		Slug:        req.Slug,
		Headline:    req.Headline,
		Description: req.Description,
		Dosage:      req.Dosage,
		Purity:      req.Purity,
		Badge:       req.Badge,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Color:       req.Color,
	}

	if err := s.prodRepo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: code или slug уже занят", ErrConflict)
		}
		return nil, fmt.Errorf("создание продукта: %w", err)
	}

	s.logger.Info("Продукт создан",
		slog.String("product_id", p.ID),
		slog.String("code", p.Code),
	)
	return p, nil
}

// GetProduct возвращает продукт по ID.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.prodRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение продукта: %w", err)
	}
	return p, nil
}

// ListProducts возвращает страницу продуктов с фильтром по категории.
func (s *CatalogService) ListProducts(ctx context.Context, categoryID *string, limit, offset int) ([]*model.Product, int, error) {
	list, err := s.prodRepo.List(ctx, categoryID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("получение списка продуктов: %w", err)
	}

	total, err := s.prodRepo.Count(ctx, categoryID)
	if err != nil {
		return nil, 0, fmt.Errorf("подсчёт продуктов: %w", err)
	}

	return list, total, nil
}

// UpdateProduct обновляет продукт.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, req ProductRequest) (*model.Product, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	p, err := s.prodRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение продукта для обновления: %w", err)
	}

	p.Code = req.Code
	p.Name = req.Name
	p.Slug = req.Slug
	p.Headline = req.Headline
	p.Description = req.Description
	p.Dosage = req.Dosage
	p.Purity = req.Purity
	p.Badge = req.Badge
	p.CategoryID = req.CategoryID
	p.ImageURL = req.ImageURL
	p.Color = req.Color

	if err := s.prodRepo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: code или slug уже занят", ErrConflict)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("обновление продукта: %w", err)
	}

	return p, nil
}

// DeleteProduct удаляет продукт.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.prodRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление продукта: %w", err)
	}
	s.logger.Info("Продукт удалён", slog.String("product_id", id))
	return nil
}
