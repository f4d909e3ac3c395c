// allocator.go — выделение идентификаторов QR-кодов.
//
// Три режима генерации:
//   - sequential — продолжение нумерации: max существующего суффикса + 1..count
//   - range — явный числовой диапазон [start, end] включительно
//   - custom — произвольный список номеров, разделённых запятыми или переносами строк
//
// Уникальность гарантирует constraint БД (ON CONFLICT DO NOTHING), а не
// предварительная проверка: при конкурентных запросах каждый код достаётся
// ровно одному из них. Уже существующие коды молча пропускаются.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/nadovalabs/verify-module/internal/repository"
)

// MaxBatchSize — максимальное количество кодов в одном запросе генерации.
const MaxBatchSize = 500

// Режимы генерации.
const (
	ModeSequential = "sequential"
	ModeRange      = "range"
	ModeCustom     = "custom"
)

// codePattern — канонический формат кода: q + десятичный номер, нижний регистр.
var codePattern = regexp.MustCompile(`^q\d+$`)

// GenerateRequest — параметры запроса генерации.
type GenerateRequest struct {
	Mode string
	// Count — количество кодов для sequential.
	Count int
	// RangeStart, RangeEnd — границы для range (включительно).
	RangeStart int
	RangeEnd   int
	// Custom — сырая строка номеров для custom.
	Custom string
}

// GenerateResult — результат генерации.
type GenerateResult struct {
	// Created — реально созданные коды в порядке запроса.
	Created []string
	// Skipped — запрошенные, но уже существовавшие коды.
	Skipped []string
}

// AllocatorService — сервис выделения идентификаторов.
type AllocatorService struct {
	qrRepo repository.QrCodeRepository
	logger *slog.Logger
}

// NewAllocatorService создаёт сервис выделения идентификаторов.
func NewAllocatorService(qrRepo repository.QrCodeRepository, logger *slog.Logger) *AllocatorService {
	return &AllocatorService{
		qrRepo: qrRepo,
		logger: logger.With(slog.String("component", "allocator")),
	}
}

// Generate выделяет коды согласно запросу и создаёт draft-записи.
// Существующие коды пропускаются; если не создано ни одного —
// возвращается ErrAllAlreadyExist.
func (s *AllocatorService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	candidates, err := s.buildCandidates(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrEmptyAllocation
	}
	if len(candidates) > MaxBatchSize {
		return nil, fmt.Errorf("%w: запрошено %d кодов, максимум %d",
			ErrValidation, len(candidates), MaxBatchSize)
	}

	createdSet, err := s.qrRepo.CreateBatch(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("создание QR-кодов: %w", err)
	}

	// Восстанавливаем порядок запроса.
	result := &GenerateResult{}
	for _, code := range candidates {
		if createdSet[code] {
			result.Created = append(result.Created, code)
		} else {
			result.Skipped = append(result.Skipped, code)
		}
	}

	if len(result.Created) == 0 {
		return nil, ErrAllAlreadyExist
	}

	s.logger.Info("Коды сгенерированы",
		slog.String("mode", req.Mode),
		slog.Int("created", len(result.Created)),
		slog.Int("skipped", len(result.Skipped)),
	)

	return result, nil
}

// buildCandidates строит упорядоченный список кодов-кандидатов без дубликатов.
func (s *AllocatorService) buildCandidates(ctx context.Context, req GenerateRequest) ([]string, error) {
	switch req.Mode {
	case ModeSequential:
		return s.sequentialCandidates(ctx, req.Count)
	case ModeRange:
		return rangeCandidates(req.RangeStart, req.RangeEnd)
	case ModeCustom:
		return customCandidates(req.Custom)
	default:
		return nil, fmt.Errorf("%w: неизвестный режим генерации %q", ErrValidation, req.Mode)
	}
}

func (s *AllocatorService) sequentialCandidates(ctx context.Context, count int) ([]string, error) {
	if count < 1 {
		return nil, ErrEmptyAllocation
	}
	if count > MaxBatchSize {
		return nil, fmt.Errorf("%w: запрошено %d кодов, максимум %d", ErrValidation, count, MaxBatchSize)
	}

	max, err := s.qrRepo.MaxCodeNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("вычисление стартового номера: %w", err)
	}

	codes := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		codes = append(codes, fmt.Sprintf("q%d", max+i))
	}
	return codes, nil
}

// rangeCandidates строит кандидатов диапазона. Порядок границ не важен:
// меньшая всегда считается началом.
func rangeCandidates(start, end int) ([]string, error) {
	if start < 1 || end < 1 {
		return nil, fmt.Errorf("%w: границы диапазона должны быть положительными", ErrValidation)
	}
	if start > end {
		start, end = end, start
	}
	if end-start+1 > MaxBatchSize {
		return nil, fmt.Errorf("%w: диапазон содержит %d кодов, максимум %d",
			ErrValidation, end-start+1, MaxBatchSize)
	}

	codes := make([]string, 0, end-start+1)
	for n := start; n <= end; n++ {
		codes = append(codes, fmt.Sprintf("q%d", n))
	}
	return codes, nil
}

// customCandidates нормализует произвольный список номеров:
// разделители — запятые и переносы строк, пробелы обрезаются, регистр
// приводится к нижнему, отсутствующий префикс q добавляется.
// Дубликаты отбрасываются с сохранением порядка первого вхождения.
func customCandidates(raw string) ([]string, error) {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	seen := make(map[string]bool, len(tokens))
	var codes []string
	for _, tok := range tokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if !strings.HasPrefix(tok, "q") {
			tok = "q" + tok
		}
		if !codePattern.MatchString(tok) {
			return nil, fmt.Errorf("%w: некорректный код %q", ErrValidation, tok)
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		codes = append(codes, tok)
	}
	return codes, nil
}
