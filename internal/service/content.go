// content.go — сервис текстовых блоков (контент публичных страниц).
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

// ContentBlockRequest — данные создания/обновления текстового блока.
type ContentBlockRequest struct {
	Key         string
	Title       *string
	Content     string
	ContentType string
	Page        string
	Section     *string
}

func (r ContentBlockRequest) validate() error {
	if strings.TrimSpace(r.Key) == "" {
		return fmt.Errorf("%w: key обязателен", ErrValidation)
	}
	if !model.ValidContentType(r.ContentType) {
		return fmt.Errorf("%w: некорректный content_type %q", ErrValidation, r.ContentType)
	}
	return nil
}

// ContentService — сервис управления текстовыми блоками.
type ContentService struct {
	repo   repository.ContentBlockRepository
	logger *slog.Logger
}

// NewContentService создаёт сервис текстовых блоков.
func NewContentService(repo repository.ContentBlockRepository, logger *slog.Logger) *ContentService {
	return &ContentService{
		repo:   repo,
		logger: logger.With(slog.String("component", "content")),
	}
}

// Create создаёт текстовый блок.
func (s *ContentService) Create(ctx context.Context, req ContentBlockRequest) (*model.ContentBlock, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	b := &model.ContentBlock{
		ID:          uuid.New().String(),
		Key:         req.Key,
		Title:       req.Title,
		Content:     req.Content,
		ContentType: req.ContentType,
		Page:        req.Page,
		Section:     req.Section,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: ключ %q уже занят", ErrConflict, req.Key)
		}
		return nil, fmt.Errorf("создание блока: %w", err)
	}

	s.logger.Info("Блок создан", slog.String("key", b.Key))
	return b, nil
}

// Get возвращает блок по ключу.
func (s *ContentService) Get(ctx context.Context, key string) (*model.ContentBlock, error) {
	b, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение блока: %w", err)
	}
	return b, nil
}

// List возвращает блоки, опционально отфильтрованные по странице.
func (s *ContentService) List(ctx context.Context, page *string) ([]*model.ContentBlock, error) {
	list, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("получение списка блоков: %w", err)
	}
	return list, nil
}

// Update обновляет блок по ключу.
func (s *ContentService) Update(ctx context.Context, req ContentBlockRequest) (*model.ContentBlock, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	b := &model.ContentBlock{
		Key:         req.Key,
		Title:       req.Title,
		Content:     req.Content,
		ContentType: req.ContentType,
		Page:        req.Page,
		Section:     req.Section,
	}

	if err := s.repo.Update(ctx, b); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("обновление блока: %w", err)
	}

	return b, nil
}

// Delete удаляет блок по ключу.
func (s *ContentService) Delete(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, key); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление блока: %w", err)
	}
	s.logger.Info("Блок удалён", slog.String("key", key))
	return nil
}
