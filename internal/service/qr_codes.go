// qr_codes.go — сервис управления записями QR-кодов (админка).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nadovalabs/verify-module/internal/domain/model"
	"github.com/nadovalabs/verify-module/internal/repository"
)

// QrUpdateRequest — полное обновление записи (last-write-wins).
// Code неизменяем и в запрос не входит.
type QrUpdateRequest struct {
	Status         string
	ProductName    *string
	BatchNumber    *string
	ExpirationDate *time.Time
	Concentration  *string
	Purity         *string
	Description    *string
	StorageInfo    *string
	ProductImage   *string
	CoaURL         *string
	ExtraFields    map[string]string
}

// QrStats — количество записей по статусам.
type QrStats struct {
	Total    int `json:"total"`
	Draft    int `json:"draft"`
	Active   int `json:"active"`
	Expired  int `json:"expired"`
	Recalled int `json:"recalled"`
}

// QrCodeService — сервис управления записями QR-кодов.
type QrCodeService struct {
	qrRepo repository.QrCodeRepository
	logger *slog.Logger
}

// NewQrCodeService создаёт сервис записей QR-кодов.
func NewQrCodeService(qrRepo repository.QrCodeRepository, logger *slog.Logger) *QrCodeService {
	return &QrCodeService{
		qrRepo: qrRepo,
		logger: logger.With(slog.String("component", "qr_service")),
	}
}

// Get возвращает запись по ID.
func (s *QrCodeService) Get(ctx context.Context, id string) (*model.QrCode, error) {
	qr, err := s.qrRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение записи: %w", err)
	}
	return qr, nil
}

// GetByCode возвращает запись по коду.
func (s *QrCodeService) GetByCode(ctx context.Context, code string) (*model.QrCode, error) {
	qr, err := s.qrRepo.GetByCode(ctx, strings.ToLower(code))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение записи: %w", err)
	}
	return qr, nil
}

// List возвращает страницу записей с фильтром по статусу и поиском.
func (s *QrCodeService) List(ctx context.Context, status *string, search string, limit, offset int) ([]*model.QrCode, int, error) {
	if status != nil && !model.ValidQrStatus(*status) {
		return nil, 0, fmt.Errorf("%w: некорректный статус %q", ErrValidation, *status)
	}

	list, err := s.qrRepo.List(ctx, status, search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("получение списка записей: %w", err)
	}

	total, err := s.qrRepo.Count(ctx, status, search)
	if err != nil {
		return nil, 0, fmt.Errorf("подсчёт записей: %w", err)
	}

	return list, total, nil
}

// Update полностью перезаписывает статус и продуктовые поля записи.
// Пустые после trim ключи extra_fields отбрасываются на границе записи.
func (s *QrCodeService) Update(ctx context.Context, id string, req QrUpdateRequest) (*model.QrCode, error) {
	if !model.ValidQrStatus(req.Status) {
		return nil, fmt.Errorf("%w: некорректный статус %q", ErrValidation, req.Status)
	}

	qr, err := s.qrRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение записи для обновления: %w", err)
	}

	qr.Status = req.Status
	qr.ProductName = req.ProductName
	qr.BatchNumber = req.BatchNumber
	qr.ExpirationDate = req.ExpirationDate
	qr.Concentration = req.Concentration
	qr.Purity = req.Purity
	qr.Description = req.Description
	qr.StorageInfo = req.StorageInfo
	qr.ProductImage = req.ProductImage
	qr.CoaURL = req.CoaURL
	qr.ExtraFields = sanitizeExtraFields(req.ExtraFields)

	if err := s.qrRepo.Update(ctx, qr); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("обновление записи: %w", err)
	}

	s.logger.Info("Запись обновлена",
		slog.String("qr_id", id),
		slog.String("code", qr.Code),
		slog.String("status", qr.Status),
	)

	return qr, nil
}

// Delete удаляет запись. Загруженные файлы в хранилище остаются —
// их ссылки становятся висячими, повторная загрузка для того же кода
// перезаписывает объект.
func (s *QrCodeService) Delete(ctx context.Context, id string) error {
	if err := s.qrRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление записи: %w", err)
	}

	s.logger.Info("Запись удалена", slog.String("qr_id", id))
	return nil
}

// Stats возвращает счётчики записей по статусам.
func (s *QrCodeService) Stats(ctx context.Context) (*QrStats, error) {
	counts, err := s.qrRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("подсчёт записей по статусам: %w", err)
	}

	stats := &QrStats{
		Draft:    counts[model.QrStatusDraft],
		Active:   counts[model.QrStatusActive],
		Expired:  counts[model.QrStatusExpired],
		Recalled: counts[model.QrStatusRecalled],
	}
	stats.Total = stats.Draft + stats.Active + stats.Expired + stats.Recalled
	return stats, nil
}

// sanitizeExtraFields отбрасывает пары с пустыми после trim ключами.
// Значения не валидируются. Пустая карта превращается в nil.
func sanitizeExtraFields(fields map[string]string) map[string]string {
	if len(fields) == 0 {
		return nil
	}
	clean := make(map[string]string, len(fields))
	for k, v := range fields {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		clean[key] = v
	}
	if len(clean) == 0 {
		return nil
	}
	return clean
}
