// Package qrimage рендерит PNG-изображения QR-кодов для печати на этикетках.
//
// Рендеринг — чистая функция без I/O: содержимое кода, именованный стиль
// и размер дают детерминированный PNG. Уровень коррекции ошибок
// зафиксирован на максимальном — этикетки печатаются мелко и затираются.
package qrimage

import (
	"fmt"
	"image/color"
	"sort"

	qrcode "github.com/skip2/go-qrcode"
)

// Допустимые размеры изображения в пикселях.
var validSizes = map[int]bool{256: true, 512: true, 1024: true}

// DefaultSize — размер по умолчанию.
const DefaultSize = 512

// DefaultStyle — стиль по умолчанию.
const DefaultStyle = "classic"

// Style — цветовая пара QR-кода.
type Style struct {
	// Name — отображаемое имя стиля.
	Name string
	// Foreground, Background — hex-цвета вида #rrggbb.
	Foreground string
	Background string
}

// styles — фиксированная палитра стилей бренда.
var styles = map[string]Style{
	"classic":  {Name: "Classic", Foreground: "#000000", Background: "#ffffff"},
	"nadova":   {Name: "Nadova", Foreground: "#0a0a0f", Background: "#ffffff"},
	"teal":     {Name: "Teal", Foreground: "#00d4aa", Background: "#0a0a0f"},
	"purple":   {Name: "Purple", Foreground: "#7c3aed", Background: "#ffffff"},
	"ocean":    {Name: "Ocean", Foreground: "#0ea5e9", Background: "#f0f9ff"},
	"midnight": {Name: "Midnight", Foreground: "#ffffff", Background: "#1e1b4b"},
	"ember":    {Name: "Ember", Foreground: "#ef4444", Background: "#fff7ed"},
	"forest":   {Name: "Forest", Foreground: "#166534", Background: "#f0fdf4"},
}

// Styles возвращает идентификаторы стилей в алфавитном порядке.
func Styles() []string {
	keys := make([]string, 0, len(styles))
	for k := range styles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StyleByID возвращает стиль по идентификатору.
func StyleByID(id string) (Style, bool) {
	s, ok := styles[id]
	return s, ok
}

// ValidSize проверяет, допустим ли размер.
func ValidSize(size int) bool {
	return validSizes[size]
}

// Render генерирует PNG QR-кода с заданным содержимым.
// styleID и size валидируются; уровень коррекции ошибок всегда Highest.
func Render(content, styleID string, size int) ([]byte, error) {
	style, ok := styles[styleID]
	if !ok {
		return nil, fmt.Errorf("неизвестный стиль %q", styleID)
	}
	if !ValidSize(size) {
		return nil, fmt.Errorf("недопустимый размер %d (допустимы 256, 512, 1024)", size)
	}

	fg, err := parseHexColor(style.Foreground)
	if err != nil {
		return nil, fmt.Errorf("цвет переднего плана: %w", err)
	}
	bg, err := parseHexColor(style.Background)
	if err != nil {
		return nil, fmt.Errorf("цвет фона: %w", err)
	}

	qr, err := qrcode.New(content, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("генерация QR-кода: %w", err)
	}
	qr.ForegroundColor = fg
	qr.BackgroundColor = bg

	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("рендеринг PNG: %w", err)
	}
	return png, nil
}

// BatchItem — результат рендеринга одного кода в пакете.
type BatchItem struct {
	Code string
	PNG  []byte
	Err  error
}

// RenderBatch рендерит QR-коды для набора кодов.
// Ошибка одного кода не прерывает пакет: элемент получает Err,
// остальные рендерятся дальше.
func RenderBatch(codes []string, targetURL func(code string) string, styleID string, size int) []BatchItem {
	items := make([]BatchItem, 0, len(codes))
	for _, code := range codes {
		png, err := Render(targetURL(code), styleID, size)
		items = append(items, BatchItem{Code: code, PNG: png, Err: err})
	}
	return items
}

// parseHexColor разбирает цвет вида #rrggbb.
func parseHexColor(s string) (color.Color, error) {
	if len(s) != 7 || s[0] != '#' {
		return nil, fmt.Errorf("некорректный hex-цвет %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return nil, fmt.Errorf("некорректный hex-цвет %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
