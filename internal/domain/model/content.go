package model

import "time"

// Допустимые типы контента текстовых блоков.
const (
	ContentTypeText     = "text"
	ContentTypeHTML     = "html"
	ContentTypeMarkdown = "markdown"
	ContentTypeJSON     = "json"
)

// ValidContentType проверяет тип контента.
func ValidContentType(s string) bool {
	switch s {
	case ContentTypeText, ContentTypeHTML, ContentTypeMarkdown, ContentTypeJSON:
		return true
	}
	return false
}

// ContentBlock — текстовый блок страницы, редактируемый из админки.
// Хранится в таблице content_blocks.
type ContentBlock struct {
	// ID — UUID записи
	ID string
	// Key — уникальный ключ блока (например, "home.hero.title")
	Key string
	// Title — заголовок блока
	Title *string
	// Content — содержимое
	Content string
	// ContentType — тип контента (text, html, markdown, json)
	ContentType string
	// Page — страница, к которой относится блок
	Page string
	// Section — секция страницы (опционально)
	Section *string
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}
