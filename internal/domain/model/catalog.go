package model

import "time"

// Category — категория каталога продуктов.
// Хранится в таблице categories.
type Category struct {
	// ID — UUID записи
	ID string
	// Name — название категории
	Name string
	// Slug — URL-идентификатор, уникален
	Slug string
	// Description — описание категории
	Description *string
	// Color — цвет оформления
	Color *string
	// Icon — имя иконки
	Icon *string
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// Product — продукт каталога.
// Хранится в таблице products.
type Product struct {
	// ID — UUID записи
	ID string
	// Code — артикул продукта, уникален
	Code string
	// Name — название продукта
	Name string
	// Slug — URL-идентификатор, уникален
	Slug string
	// Headline — краткий слоган
	Headline *string
	// Description — описание
	Description *string
	// Dosage — дозировка
	Dosage *string
	// Purity — чистота
	Purity *string
	// Badge — бейдж ("New", "Popular" и т.п.)
	Badge *string
	// CategoryID — UUID категории (обязателен)
	CategoryID string
	// ImageURL — URL изображения
	ImageURL *string
	// Color — цвет оформления
	Color *string
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}
