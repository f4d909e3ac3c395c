package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/nadovalabs/verify-module/internal/domain/model"
)

// CategoryRepository — интерфейс CRUD для таблицы categories.
type CategoryRepository interface {
	// Create создаёт категорию.
	Create(ctx context.Context, c *model.Category) error
	// GetByID возвращает категорию по UUID.
	GetByID(ctx context.Context, id string) (*model.Category, error)
	// List возвращает все категории, отсортированные по имени.
	List(ctx context.Context) ([]*model.Category, error)
	// Update обновляет категорию.
	Update(ctx context.Context, c *model.Category) error
	// Delete удаляет категорию.
	Delete(ctx context.Context, id string) error
}

type categoryRepo struct {
	db DBTX
}

// NewCategoryRepository создаёт репозиторий категорий.
func NewCategoryRepository(db DBTX) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, c *model.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, description, color, icon)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		c.ID, c.Name, c.Slug, c.Description, c.Color, c.Icon,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: slug уже занят", ErrConflict)
		}
		return fmt.Errorf("ошибка создания категории: %w", err)
	}
	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	query := `
		SELECT id, name, slug, description, color, icon, created_at, updated_at
		FROM categories
		WHERE id = $1`

	c := &model.Category{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.Color, &c.Icon,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения категории: %w", err)
	}
	return c, nil
}

func (r *categoryRepo) List(ctx context.Context) ([]*model.Category, error) {
	query := `
		SELECT id, name, slug, description, color, icon, created_at, updated_at
		FROM categories
		ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка категорий: %w", err)
	}
	defer rows.Close()

	var result []*model.Category
	for rows.Next() {
		c := &model.Category{}
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.Color, &c.Icon,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования категории: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *categoryRepo) Update(ctx context.Context, c *model.Category) error {
	query := `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, color = $5, icon = $6,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		c.ID, c.Name, c.Slug, c.Description, c.Color, c.Icon,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: slug уже занят", ErrConflict)
		}
		return fmt.Errorf("ошибка обновления категории: %w", err)
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления категории: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ProductRepository — интерфейс CRUD для таблицы products.
type ProductRepository interface {
	// Create создаёт продукт.
	Create(ctx context.Context, p *model.Product) error
	// GetByID возвращает продукт по UUID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
	// List возвращает страницу продуктов с фильтром по категории.
	List(ctx context.Context, categoryID *string, limit, offset int) ([]*model.Product, error)
	// Count возвращает количество продуктов с фильтром по категории.
	Count(ctx context.Context, categoryID *string) (int, error)
	// Update обновляет продукт.
	Update(ctx context.Context, p *model.Product) error
	// Delete удаляет продукт.
	Delete(ctx context.Context, id string) error
}

type productRepo struct {
	db DBTX
}

// NewProductRepository создаёт репозиторий продуктов.
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, code, name, slug, headline, description, dosage,
	purity, badge, category_id, image_url, color, created_at, updated_at`

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (id, code, name, slug, headline, description,
			dosage, purity, badge, category_id, image_url, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.ID, p.Code, p.Name, p.Slug, p.Headline, p.Description,
		p.Dosage, p.Purity, p.Badge, p.CategoryID, p.ImageURL, p.Color,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: code или slug уже занят", ErrConflict)
		}
		return fmt.Errorf("ошибка создания продукта: %w", err)
	}
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	p := &model.Product{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Code, &p.Name, &p.Slug, &p.Headline, &p.Description,
		&p.Dosage, &p.Purity, &p.Badge, &p.CategoryID, &p.ImageURL, &p.Color,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения продукта: %w", err)
	}
	return p, nil
}

func (r *productRepo) List(ctx context.Context, categoryID *string, limit, offset int) ([]*model.Product, error) {
	var conditions []string
	var args []any

	if categoryID != nil {
		conditions = append(conditions, "category_id = $1")
		args = append(args, *categoryID)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY name
		LIMIT $%d OFFSET $%d`, productColumns, where, len(args)+1, len(args)+2)

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка продуктов: %w", err)
	}
	defer rows.Close()

	var result []*model.Product
	for rows.Next() {
		p := &model.Product{}
		if err := rows.Scan(
			&p.ID, &p.Code, &p.Name, &p.Slug, &p.Headline, &p.Description,
			&p.Dosage, &p.Purity, &p.Badge, &p.CategoryID, &p.ImageURL, &p.Color,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования продукта: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *productRepo) Count(ctx context.Context, categoryID *string) (int, error) {
	query := `SELECT COUNT(*) FROM products`
	var args []any
	if categoryID != nil {
		query += ` WHERE category_id = $1`
		args = append(args, *categoryID)
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта продуктов: %w", err)
	}
	return count, nil
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET code = $2, name = $3, slug = $4, headline = $5, description = $6,
			dosage = $7, purity = $8, badge = $9, category_id = $10,
			image_url = $11, color = $12, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		p.ID, p.Code, p.Name, p.Slug, p.Headline, p.Description,
		p.Dosage, p.Purity, p.Badge, p.CategoryID, p.ImageURL, p.Color,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: code или slug уже занят", ErrConflict)
		}
		return fmt.Errorf("ошибка обновления продукта: %w", err)
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления продукта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
