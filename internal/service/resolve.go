// resolve.go — публичное разрешение QR-кода.
//
// Единственная публичная операция сервиса: по токену из отсканированного
// QR-кода вернуть проекцию записи. Статус записи определяет видимость:
//   - draft — продуктовые поля скрыты, отдаётся только заглушка регистрации
//   - active — полная карточка продукта
//   - expired, recalled — полная карточка плюс предупреждающий баннер
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nadovalabs/verify-module/internal/domain/model"
	"github.com/nadovalabs/verify-module/internal/repository"
)

// Баннеры публичной проекции.
const (
	BannerNone     = ""
	BannerExpired  = "expired"
	BannerRecalled = "recalled"
)

// PublicView — проекция записи для публичного endpoint.
// Для draft-записей продуктовые поля всегда пусты, даже если заполнены в БД.
type PublicView struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	// Registering — true для draft: код выделен, но карточка ещё не опубликована.
	Registering bool   `json:"registering"`
	Banner      string `json:"banner,omitempty"`

	ProductName    *string           `json:"product_name,omitempty"`
	BatchNumber    *string           `json:"batch_number,omitempty"`
	ExpirationDate *string           `json:"expiration_date,omitempty"`
	Concentration  *string           `json:"concentration,omitempty"`
	Purity         *string           `json:"purity,omitempty"`
	Description    *string           `json:"description,omitempty"`
	StorageInfo    *string           `json:"storage_info,omitempty"`
	ProductImage   *string           `json:"product_image,omitempty"`
	CoaURL         *string           `json:"coa_url,omitempty"`
	ExtraFields    map[string]string `json:"extra_fields,omitempty"`
}

// ResolveService — сервис публичного разрешения кодов.
type ResolveService struct {
	qrRepo repository.QrCodeRepository
	logger *slog.Logger
}

// NewResolveService создаёт сервис публичного разрешения.
func NewResolveService(qrRepo repository.QrCodeRepository, logger *slog.Logger) *ResolveService {
	return &ResolveService{
		qrRepo: qrRepo,
		logger: logger.With(slog.String("component", "resolve")),
	}
}

// Resolve возвращает публичную проекцию по токену из URL.
// Токен, не совпадающий с форматом кода (регистронезависимо), сразу даёт
// ErrNotFound — без обращения к БД. Операция только читает, идемпотентна.
func (s *ResolveService) Resolve(ctx context.Context, token string) (*PublicView, error) {
	code := strings.ToLower(strings.TrimSpace(token))
	if !codePattern.MatchString(code) {
		return nil, ErrNotFound
	}

	qr, err := s.qrRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("разрешение кода: %w", err)
	}

	return ProjectPublicView(qr), nil
}

// ProjectPublicView строит публичную проекцию записи по её статусу.
func ProjectPublicView(qr *model.QrCode) *PublicView {
	view := &PublicView{
		Code:   qr.Code,
		Status: qr.Status,
	}

	// Draft скрывает все продуктовые поля.
	if qr.Status == model.QrStatusDraft {
		view.Registering = true
		return view
	}

	switch qr.Status {
	case model.QrStatusExpired:
		view.Banner = BannerExpired
	case model.QrStatusRecalled:
		view.Banner = BannerRecalled
	}

	view.ProductName = qr.ProductName
	view.BatchNumber = qr.BatchNumber
	view.Concentration = qr.Concentration
	view.Purity = qr.Purity
	view.Description = qr.Description
	view.StorageInfo = qr.StorageInfo
	view.ProductImage = qr.ProductImage
	view.CoaURL = qr.CoaURL
	view.ExtraFields = qr.ExtraFields

	if qr.ExpirationDate != nil {
		d := qr.ExpirationDate.Format("2006-01-02")
		view.ExpirationDate = &d
	}

	return view
}
