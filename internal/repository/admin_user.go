package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nadovalabs/verify-module/internal/domain/model"
)

// AdminUserRepository — интерфейс доступа к таблице admin_users.
type AdminUserRepository interface {
	// Create создаёт учётную запись.
	Create(ctx context.Context, u *model.AdminUser) error
	// GetByEmail возвращает учётную запись по email.
	GetByEmail(ctx context.Context, email string) (*model.AdminUser, error)
	// GetByID возвращает учётную запись по UUID.
	GetByID(ctx context.Context, id string) (*model.AdminUser, error)
	// Count возвращает количество учётных записей.
	Count(ctx context.Context) (int, error)
}

type adminUserRepo struct {
	db DBTX
}

// NewAdminUserRepository создаёт репозиторий учётных записей.
func NewAdminUserRepository(db DBTX) AdminUserRepository {
	return &adminUserRepo{db: db}
}

func (r *adminUserRepo) Create(ctx context.Context, u *model.AdminUser) error {
	query := `
		INSERT INTO admin_users (id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email уже зарегистрирован", ErrConflict)
		}
		return fmt.Errorf("ошибка создания учётной записи: %w", err)
	}
	return nil
}

func (r *adminUserRepo) GetByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	query := `
		SELECT id, email, password_hash, role, created_at
		FROM admin_users
		WHERE email = $1`

	u := &model.AdminUser{}
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения учётной записи: %w", err)
	}
	return u, nil
}

func (r *adminUserRepo) GetByID(ctx context.Context, id string) (*model.AdminUser, error) {
	query := `
		SELECT id, email, password_hash, role, created_at
		FROM admin_users
		WHERE id = $1`

	u := &model.AdminUser{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения учётной записи: %w", err)
	}
	return u, nil
}

func (r *adminUserRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта учётных записей: %w", err)
	}
	return count, nil
}
