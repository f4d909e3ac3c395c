// admin_users.go — сервис учётных записей администраторов.
//
// Учётные записи первичны (таблица admin_users), пароли хранятся
// bcrypt-хэшами. Bootstrap создаёт первую учётную запись из конфигурации,
// если таблица пуста.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nadovalabs/verify-module/internal/domain/model"
	"github.com/nadovalabs/verify-module/internal/repository"
)

// AdminUserService — сервис учётных записей.
type AdminUserService struct {
	repo   repository.AdminUserRepository
	logger *slog.Logger
}

// NewAdminUserService создаёт сервис учётных записей.
func NewAdminUserService(repo repository.AdminUserRepository, logger *slog.Logger) *AdminUserService {
	return &AdminUserService{
		repo:   repo,
		logger: logger.With(slog.String("component", "admin_users")),
	}
}

// Authenticate проверяет email и пароль.
// Возвращает ErrInvalidCredentials и при неизвестном email, и при
// неверном пароле — без различия, чтобы не раскрывать существование учётки.
func (s *AdminUserService) Authenticate(ctx context.Context, email, password string) (*model.AdminUser, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("поиск учётной записи: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// Get возвращает учётную запись по ID.
func (s *AdminUserService) Get(ctx context.Context, id string) (*model.AdminUser, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение учётной записи: %w", err)
	}
	return u, nil
}

// Create создаёт учётную запись с bcrypt-хэшем пароля.
func (s *AdminUserService) Create(ctx context.Context, email, password, role string) (*model.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email обязателен", ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: пароль короче 8 символов", ErrValidation)
	}
	if role != model.RoleAdmin && role != model.RoleEditor {
		return nil, fmt.Errorf("%w: некорректная роль %q", ErrValidation, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("хэширование пароля: %w", err)
	}

	u := &model.AdminUser{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: email уже зарегистрирован", ErrConflict)
		}
		return nil, fmt.Errorf("создание учётной записи: %w", err)
	}

	s.logger.Info("Учётная запись создана",
		slog.String("user_id", u.ID),
		slog.String("email", u.Email),
		slog.String("role", u.Role),
	)

	return u, nil
}

// Bootstrap создаёт первую учётную запись администратора из конфигурации,
// если таблица пуста. Повторные запуски ничего не делают.
func (s *AdminUserService) Bootstrap(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("подсчёт учётных записей: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := s.Create(ctx, email, password, model.RoleAdmin); err != nil {
		return fmt.Errorf("bootstrap администратора: %w", err)
	}

	s.logger.Info("Bootstrap-администратор создан", slog.String("email", email))
	return nil
}
