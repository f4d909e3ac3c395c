package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nadovalabs/verify-module/internal/domain/model"
)

// QrCodeRepository — интерфейс доступа к таблице qr_codes.
type QrCodeRepository interface {
	// CreateBatch вставляет новые draft-записи для кодов одной операцией.
	// Коды, уже существующие в таблице, пропускаются (ON CONFLICT DO NOTHING) —
	// уникальность гарантирует constraint на code, а не предварительная проверка.
	// Возвращает множество реально созданных кодов.
	CreateBatch(ctx context.Context, codes []string) (map[string]bool, error)
	// GetByID возвращает запись по UUID.
	GetByID(ctx context.Context, id string) (*model.QrCode, error)
	// GetByCode возвращает запись по точному значению code.
	GetByCode(ctx context.Context, code string) (*model.QrCode, error)
	// List возвращает страницу записей с фильтром по статусу и поиском
	// по code/product_name.
	List(ctx context.Context, status *string, search string, limit, offset int) ([]*model.QrCode, error)
	// Count возвращает количество записей с теми же фильтрами, что и List.
	Count(ctx context.Context, status *string, search string) (int, error)
	// CountByStatus возвращает количество записей по каждому статусу.
	CountByStatus(ctx context.Context) (map[string]int, error)
	// MaxCodeNumber возвращает максимальный числовой суффикс среди кодов
	// формата q<число> (0, если таких кодов нет).
	MaxCodeNumber(ctx context.Context) (int, error)
	// Update перезаписывает статус и продуктовые поля записи (last-write-wins).
	Update(ctx context.Context, qr *model.QrCode) error
	// Delete удаляет запись. Загруженные в хранилище файлы не трогаются.
	Delete(ctx context.Context, id string) error
}

// qrCodeRepo — реализация QrCodeRepository.
type qrCodeRepo struct {
	db DBTX
}

// NewQrCodeRepository создаёт репозиторий QR-кодов.
func NewQrCodeRepository(db DBTX) QrCodeRepository {
	return &qrCodeRepo{db: db}
}

// qrColumns — общий список колонок для SELECT.
const qrColumns = `id, code, status, product_name, batch_number, expiration_date,
	concentration, purity, description, storage_info, product_image, coa_url,
	extra_fields, created_at, updated_at`

func (r *qrCodeRepo) CreateBatch(ctx context.Context, codes []string) (map[string]bool, error) {
	ids := make([]string, len(codes))
	for i := range codes {
		ids[i] = uuid.New().String()
	}

	query := `
		INSERT INTO qr_codes (id, code, status)
		SELECT t.id, t.code, 'draft'
		FROM unnest($1::uuid[], $2::text[]) AS t(id, code)
		ON CONFLICT (code) DO NOTHING
		RETURNING code`

	rows, err := r.db.Query(ctx, query, ids, codes)
	if err != nil {
		return nil, fmt.Errorf("ошибка пакетной вставки QR-кодов: %w", err)
	}
	defer rows.Close()

	created := make(map[string]bool, len(codes))
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("ошибка сканирования кода: %w", err)
		}
		created[code] = true
	}
	return created, rows.Err()
}

func (r *qrCodeRepo) GetByID(ctx context.Context, id string) (*model.QrCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM qr_codes WHERE id = $1`, qrColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *qrCodeRepo) GetByCode(ctx context.Context, code string) (*model.QrCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM qr_codes WHERE code = $1`, qrColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, code))
}

// scanOne сканирует одну строку qr_codes.
func (r *qrCodeRepo) scanOne(row pgx.Row) (*model.QrCode, error) {
	qr := &model.QrCode{}
	err := row.Scan(
		&qr.ID, &qr.Code, &qr.Status, &qr.ProductName, &qr.BatchNumber,
		&qr.ExpirationDate, &qr.Concentration, &qr.Purity, &qr.Description,
		&qr.StorageInfo, &qr.ProductImage, &qr.CoaURL,
		&qr.ExtraFields, &qr.CreatedAt, &qr.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения QR-кода: %w", err)
	}
	return qr, nil
}

// buildFilter строит WHERE по статусу и строке поиска.
func buildQrFilter(status *string, search string) (string, []any) {
	var conditions []string
	var args []any
	argNum := 1

	if status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, *status)
		argNum++
	}
	if search != "" {
		conditions = append(conditions,
			fmt.Sprintf("(code ILIKE $%d OR product_name ILIKE $%d)", argNum, argNum))
		args = append(args, "%"+search+"%")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	return where, args
}

func (r *qrCodeRepo) List(ctx context.Context, status *string, search string, limit, offset int) ([]*model.QrCode, error) {
	where, args := buildQrFilter(status, search)

	query := fmt.Sprintf(`
		SELECT %s
		FROM qr_codes
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, qrColumns, where, len(args)+1, len(args)+2)

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка QR-кодов: %w", err)
	}
	defer rows.Close()

	var result []*model.QrCode
	for rows.Next() {
		qr := &model.QrCode{}
		if err := rows.Scan(
			&qr.ID, &qr.Code, &qr.Status, &qr.ProductName, &qr.BatchNumber,
			&qr.ExpirationDate, &qr.Concentration, &qr.Purity, &qr.Description,
			&qr.StorageInfo, &qr.ProductImage, &qr.CoaURL,
			&qr.ExtraFields, &qr.CreatedAt, &qr.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования QR-кода: %w", err)
		}
		result = append(result, qr)
	}
	return result, rows.Err()
}

func (r *qrCodeRepo) Count(ctx context.Context, status *string, search string) (int, error) {
	where, args := buildQrFilter(status, search)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM qr_codes %s`, where)

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта QR-кодов: %w", err)
	}
	return count, nil
}

func (r *qrCodeRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM qr_codes GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта QR-кодов по статусам: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования счётчика: %w", err)
		}
		result[status] = count
	}
	return result, rows.Err()
}

func (r *qrCodeRepo) MaxCodeNumber(ctx context.Context) (int, error) {
	// Коды, не совпадающие с q<число>, игнорируются.
	query := `
		SELECT COALESCE(MAX(substring(code from 2)::bigint), 0)
		FROM qr_codes
		WHERE code ~ '^q[0-9]+$'`

	var max int
	if err := r.db.QueryRow(ctx, query).Scan(&max); err != nil {
		return 0, fmt.Errorf("ошибка вычисления максимального номера кода: %w", err)
	}
	return max, nil
}

func (r *qrCodeRepo) Update(ctx context.Context, qr *model.QrCode) error {
	// code неизменяем — в UPDATE не входит.
	query := `
		UPDATE qr_codes
		SET status = $2, product_name = $3, batch_number = $4, expiration_date = $5,
			concentration = $6, purity = $7, description = $8, storage_info = $9,
			product_image = $10, coa_url = $11, extra_fields = $12,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	// Пустая карта хранится как NULL.
	var extra map[string]string
	if len(qr.ExtraFields) > 0 {
		extra = qr.ExtraFields
	}

	err := r.db.QueryRow(ctx, query,
		qr.ID, qr.Status, qr.ProductName, qr.BatchNumber, qr.ExpirationDate,
		qr.Concentration, qr.Purity, qr.Description, qr.StorageInfo,
		qr.ProductImage, qr.CoaURL, extra,
	).Scan(&qr.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления QR-кода: %w", err)
	}
	return nil
}

func (r *qrCodeRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM qr_codes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления QR-кода: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
