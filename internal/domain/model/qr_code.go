package model

import "time"

// Статусы QR-кода. Переходы между статусами не ограничены —
// редактор может выставить любой статус в любой момент.
const (
	QrStatusDraft    = "draft"
	QrStatusActive   = "active"
	QrStatusExpired  = "expired"
	QrStatusRecalled = "recalled"
)

// ValidQrStatus проверяет, является ли строка допустимым статусом QR-кода.
func ValidQrStatus(s string) bool {
	switch s {
	case QrStatusDraft, QrStatusActive, QrStatusExpired, QrStatusRecalled:
		return true
	}
	return false
}

// QrCode — запись QR-кода верификации продукта.
// Хранится в таблице qr_codes.
type QrCode struct {
	// ID — UUID записи
	ID string
	// Code — публичный идентификатор формата q<число>, уникален, неизменяем
	Code string
	// Status — статус (draft, active, expired, recalled)
	Status string
	// ProductName — название продукта
	ProductName *string
	// BatchNumber — номер партии
	BatchNumber *string
	// ExpirationDate — срок годности
	ExpirationDate *time.Time
	// Concentration — концентрация (например, "5mg")
	Concentration *string
	// Purity — чистота (например, "99.8%")
	Purity *string
	// Description — описание продукта
	Description *string
	// StorageInfo — условия хранения
	StorageInfo *string
	// ProductImage — URL изображения продукта
	ProductImage *string
	// CoaURL — URL сертификата анализа (PDF)
	CoaURL *string
	// ExtraFields — произвольные поля ключ→значение.
	// Ключи непустые после trim; фильтрация — на границе записи.
	ExtraFields map[string]string
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}
