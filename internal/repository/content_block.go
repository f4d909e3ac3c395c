package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nadovalabs/verify-module/internal/domain/model"
)

// ContentBlockRepository — интерфейс CRUD для таблицы content_blocks.
type ContentBlockRepository interface {
	// Create создаёт текстовый блок.
	Create(ctx context.Context, b *model.ContentBlock) error
	// GetByKey возвращает блок по уникальному ключу.
	GetByKey(ctx context.Context, key string) (*model.ContentBlock, error)
	// List возвращает блоки, опционально отфильтрованные по странице.
	List(ctx context.Context, page *string) ([]*model.ContentBlock, error)
	// Update обновляет блок по ключу.
	Update(ctx context.Context, b *model.ContentBlock) error
	// Delete удаляет блок по ключу.
	Delete(ctx context.Context, key string) error
}

type contentBlockRepo struct {
	db DBTX
}

// NewContentBlockRepository создаёт репозиторий текстовых блоков.
func NewContentBlockRepository(db DBTX) ContentBlockRepository {
	return &contentBlockRepo{db: db}
}

func (r *contentBlockRepo) Create(ctx context.Context, b *model.ContentBlock) error {
	query := `
		INSERT INTO content_blocks (id, key, title, content, content_type, page, section)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		b.ID, b.Key, b.Title, b.Content, b.ContentType, b.Page, b.Section,
	).Scan(&b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ключ уже занят", ErrConflict)
		}
		return fmt.Errorf("ошибка создания блока: %w", err)
	}
	return nil
}

func (r *contentBlockRepo) GetByKey(ctx context.Context, key string) (*model.ContentBlock, error) {
	query := `
		SELECT id, key, title, content, content_type, page, section, updated_at
		FROM content_blocks
		WHERE key = $1`

	b := &model.ContentBlock{}
	err := r.db.QueryRow(ctx, query, key).Scan(
		&b.ID, &b.Key, &b.Title, &b.Content, &b.ContentType, &b.Page, &b.Section,
		&b.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения блока: %w", err)
	}
	return b, nil
}

func (r *contentBlockRepo) List(ctx context.Context, page *string) ([]*model.ContentBlock, error) {
	query := `
		SELECT id, key, title, content, content_type, page, section, updated_at
		FROM content_blocks`
	var args []any
	if page != nil {
		query += ` WHERE page = $1`
		args = append(args, *page)
	}
	query += ` ORDER BY key`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка блоков: %w", err)
	}
	defer rows.Close()

	var result []*model.ContentBlock
	for rows.Next() {
		b := &model.ContentBlock{}
		if err := rows.Scan(
			&b.ID, &b.Key, &b.Title, &b.Content, &b.ContentType, &b.Page, &b.Section,
			&b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования блока: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *contentBlockRepo) Update(ctx context.Context, b *model.ContentBlock) error {
	query := `
		UPDATE content_blocks
		SET title = $2, content = $3, content_type = $4, page = $5, section = $6,
			updated_at = now()
		WHERE key = $1
		RETURNING id, updated_at`

	err := r.db.QueryRow(ctx, query,
		b.Key, b.Title, b.Content, b.ContentType, b.Page, b.Section,
	).Scan(&b.ID, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления блока: %w", err)
	}
	return nil
}

func (r *contentBlockRepo) Delete(ctx context.Context, key string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM content_blocks WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("ошибка удаления блока: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
