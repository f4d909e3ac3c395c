// qr_codes.go — админские обработчики записей QR-кодов:
// генерация, список, карточка, обновление, удаление, рендеринг PNG,
// ZIP-архив пакета и загрузка файлов (изображение, COA).
package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/nadovalabs/verify-module/internal/api/errors"
	"github.com/nadovalabs/verify-module/internal/domain/model"
	"github.com/nadovalabs/verify-module/internal/qrimage"
	"github.com/nadovalabs/verify-module/internal/service"
	"github.com/nadovalabs/verify-module/internal/storage"
)

// maxUploadSize — максимальный размер загружаемого файла (10 MB).
const maxUploadSize = 10 << 20

// QrCodeHandler — обработчик админского API записей QR-кодов.
type QrCodeHandler struct {
	allocator *service.AllocatorService
	qrCodes   *service.QrCodeService
	files     storage.FileStorage
	// publicBaseURL — база публичных ссылок, зашиваемых в QR-изображения.
	publicBaseURL string
	logger        *slog.Logger
}

// NewQrCodeHandler создаёт обработчик записей QR-кодов.
func NewQrCodeHandler(
	allocator *service.AllocatorService,
	qrCodes *service.QrCodeService,
	files storage.FileStorage,
	publicBaseURL string,
	logger *slog.Logger,
) *QrCodeHandler {
	return &QrCodeHandler{
		allocator:     allocator,
		qrCodes:       qrCodes,
		files:         files,
		publicBaseURL: publicBaseURL,
		logger:        logger.With(slog.String("component", "qr_handler")),
	}
}

// targetURL — публичная ссылка, зашиваемая в QR-изображение.
func (h *QrCodeHandler) targetURL(code string) string {
	return h.publicBaseURL + "/" + code
}

// --- DTO ---

// qrCodeDTO — JSON-представление записи QR-кода в админском API.
type qrCodeDTO struct {
	ID             string            `json:"id"`
	Code           string            `json:"code"`
	Status         string            `json:"status"`
	ProductName    *string           `json:"product_name"`
	BatchNumber    *string           `json:"batch_number"`
	ExpirationDate *string           `json:"expiration_date"`
	Concentration  *string           `json:"concentration"`
	Purity         *string           `json:"purity"`
	Description    *string           `json:"description"`
	StorageInfo    *string           `json:"storage_info"`
	ProductImage   *string           `json:"product_image"`
	CoaURL         *string           `json:"coa_url"`
	ExtraFields    map[string]string `json:"extra_fields,omitempty"`
	CreatedAt      string            `json:"created_at"`
	UpdatedAt      string            `json:"updated_at"`
}

func toQrCodeDTO(qr *model.QrCode) qrCodeDTO {
	dto := qrCodeDTO{
		ID:            qr.ID,
		Code:          qr.Code,
		Status:        qr.Status,
		ProductName:   qr.ProductName,
		BatchNumber:   qr.BatchNumber,
		Concentration: qr.Concentration,
		Purity:        qr.Purity,
		Description:   qr.Description,
		StorageInfo:   qr.StorageInfo,
		ProductImage:  qr.ProductImage,
		CoaURL:        qr.CoaURL,
		ExtraFields:   qr.ExtraFields,
		CreatedAt:     qr.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     qr.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if qr.ExpirationDate != nil {
		d := qr.ExpirationDate.Format("2006-01-02")
		dto.ExpirationDate = &d
	}
	return dto
}

// --- Генерация ---

// generateRequest — тело запроса генерации кодов.
type generateRequest struct {
	Mode       string `json:"mode"`
	Count      int    `json:"count,omitempty"`
	RangeStart int    `json:"range_start,omitempty"`
	RangeEnd   int    `json:"range_end,omitempty"`
	Custom     string `json:"custom,omitempty"`
}

// generateResponse — результат генерации.
type generateResponse struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// Generate — выделение новых кодов.
func (h *QrCodeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.allocator.Generate(r.Context(), service.GenerateRequest{
		Mode:       req.Mode,
		Count:      req.Count,
		RangeStart: req.RangeStart,
		RangeEnd:   req.RangeEnd,
		Custom:     req.Custom,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := generateResponse{Created: result.Created, Skipped: result.Skipped}
	if resp.Created == nil {
		resp.Created = []string{}
	}
	if resp.Skipped == nil {
		resp.Skipped = []string{}
	}
	writeJSON(w, http.StatusCreated, resp)
}

// --- CRUD ---

// listResponse — страница записей.
type listResponse struct {
	Items []qrCodeDTO `json:"items"`
	Total int         `json:"total"`
}

// List — страница записей с фильтром по статусу и поиском.
func (h *QrCodeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	var status *string
	if v := r.URL.Query().Get("status"); v != "" {
		status = &v
	}
	search := r.URL.Query().Get("search")

	list, total, err := h.qrCodes.List(r.Context(), status, search, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items := make([]qrCodeDTO, 0, len(list))
	for _, qr := range list {
		items = append(items, toQrCodeDTO(qr))
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

// Get — карточка записи по ID.
func (h *QrCodeHandler) Get(w http.ResponseWriter, r *http.Request) {
	qr, err := h.qrCodes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQrCodeDTO(qr))
}

// updateRequest — полное обновление записи.
type updateRequest struct {
	Status         string            `json:"status"`
	ProductName    *string           `json:"product_name"`
	BatchNumber    *string           `json:"batch_number"`
	ExpirationDate *string           `json:"expiration_date"`
	Concentration  *string           `json:"concentration"`
	Purity         *string           `json:"purity"`
	Description    *string           `json:"description"`
	StorageInfo    *string           `json:"storage_info"`
	ProductImage   *string           `json:"product_image"`
	CoaURL         *string           `json:"coa_url"`
	ExtraFields    map[string]string `json:"extra_fields"`
}

// Update — полное обновление статуса и продуктовых полей.
func (h *QrCodeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	svcReq := service.QrUpdateRequest{
		Status:        req.Status,
		ProductName:   req.ProductName,
		BatchNumber:   req.BatchNumber,
		Concentration: req.Concentration,
		Purity:        req.Purity,
		Description:   req.Description,
		StorageInfo:   req.StorageInfo,
		ProductImage:  req.ProductImage,
		CoaURL:        req.CoaURL,
		ExtraFields:   req.ExtraFields,
	}

	if req.ExpirationDate != nil && *req.ExpirationDate != "" {
		d, err := time.Parse("2006-01-02", *req.ExpirationDate)
		if err != nil {
			apierrors.ValidationError(w, "expiration_date должна быть в формате YYYY-MM-DD")
			return
		}
		svcReq.ExpirationDate = &d
	}

	qr, err := h.qrCodes.Update(r.Context(), chi.URLParam(r, "id"), svcReq)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQrCodeDTO(qr))
}

// Delete — удаление записи. Файлы в хранилище не трогаются.
func (h *QrCodeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.qrCodes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats — счётчики записей по статусам.
func (h *QrCodeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.qrCodes.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- Рендеринг изображений ---

// styleDTO — описание стиля для UI.
type styleDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Foreground string `json:"foreground"`
	Background string `json:"background"`
}

// Styles — палитра стилей QR-изображений.
func (h *QrCodeHandler) Styles(w http.ResponseWriter, r *http.Request) {
	items := make([]styleDTO, 0, 8)
	for _, id := range qrimage.Styles() {
		s, _ := qrimage.StyleByID(id)
		items = append(items, styleDTO{
			ID:         id,
			Name:       s.Name,
			Foreground: s.Foreground,
			Background: s.Background,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"styles": items, "sizes": []int{256, 512, 1024}})
}

// renderParams извлекает style и size из query с валидацией.
func renderParams(r *http.Request) (string, int, error) {
	style := r.URL.Query().Get("style")
	if style == "" {
		style = qrimage.DefaultStyle
	}
	if _, ok := qrimage.StyleByID(style); !ok {
		return "", 0, fmt.Errorf("неизвестный стиль %q", style)
	}

	size := qrimage.DefaultSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || !qrimage.ValidSize(n) {
			return "", 0, fmt.Errorf("недопустимый размер %q (допустимы 256, 512, 1024)", v)
		}
		size = n
	}
	return style, size, nil
}

// RenderPNG — PNG QR-изображения одной записи.
func (h *QrCodeHandler) RenderPNG(w http.ResponseWriter, r *http.Request) {
	style, size, err := renderParams(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	qr, err := h.qrCodes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	png, err := qrimage.Render(h.targetURL(qr.Code), style, size)
	if err != nil {
		apierrors.InternalError(w, "ошибка рендеринга QR-кода")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", qrimage.FileName(qr.Code)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// archiveRequest — тело запроса ZIP-архива.
type archiveRequest struct {
	Codes []string `json:"codes"`
	Style string   `json:"style,omitempty"`
	Size  int      `json:"size,omitempty"`
}

// Archive — ZIP-архив QR-изображений для набора кодов.
// Элементы с ошибкой рендеринга пропускаются, остальные попадают в архив.
func (h *QrCodeHandler) Archive(w http.ResponseWriter, r *http.Request) {
	var req archiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Codes) == 0 {
		apierrors.ValidationError(w, "codes обязателен")
		return
	}
	if len(req.Codes) > service.MaxBatchSize {
		apierrors.ValidationError(w,
			fmt.Sprintf("запрошено %d кодов, максимум %d", len(req.Codes), service.MaxBatchSize))
		return
	}

	style := req.Style
	if style == "" {
		style = qrimage.DefaultStyle
	}
	if _, ok := qrimage.StyleByID(style); !ok {
		apierrors.ValidationError(w, fmt.Sprintf("неизвестный стиль %q", style))
		return
	}
	size := req.Size
	if size == 0 {
		size = qrimage.DefaultSize
	}
	if !qrimage.ValidSize(size) {
		apierrors.ValidationError(w, fmt.Sprintf("недопустимый размер %d", size))
		return
	}

	items := qrimage.RenderBatch(req.Codes, h.targetURL, style, size)

	var buf bytes.Buffer
	written, err := qrimage.WriteArchive(&buf, items)
	if err != nil {
		apierrors.InternalError(w, "ошибка формирования архива")
		return
	}
	if written == 0 {
		apierrors.InternalError(w, "ни один код не удалось отрендерить")
		return
	}

	name := qrimage.ArchiveName(req.Codes[0], req.Codes[len(req.Codes)-1])
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// --- Загрузка файлов ---

// imageExtensions — допустимые расширения изображений продукта.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
}

// uploadResponse — результат загрузки файла.
type uploadResponse struct {
	URL string `json:"url"`
}

// UploadImage — загрузка изображения продукта для записи.
// Возвращает публичный URL; ссылка в записи обновляется отдельным
// сохранением карточки, поэтому неудачная загрузка не затирает старую.
func (h *QrCodeHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	qr, err := h.qrCodes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	file, header, err := h.uploadedFile(w, r)
	if err != nil {
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageExtensions[ext] {
		apierrors.ValidationError(w, "допустимы файлы png, jpg, jpeg, webp")
		return
	}

	contentType := header.Header.Get("Content-Type")
	key := storage.ObjectKeyImage(qr.Code, ext)

	url, err := h.files.Upload(r.Context(), key, contentType, file)
	if err != nil {
		h.logger.Error("Ошибка загрузки изображения",
			slog.String("code", qr.Code),
			slog.String("error", err.Error()),
		)
		apierrors.StorageUnavailable(w, "не удалось загрузить файл")
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{URL: url})
}

// UploadCoa — загрузка сертификата анализа (PDF) для записи.
func (h *QrCodeHandler) UploadCoa(w http.ResponseWriter, r *http.Request) {
	qr, err := h.qrCodes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	file, header, err := h.uploadedFile(w, r)
	if err != nil {
		return
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(header.Filename)) != ".pdf" {
		apierrors.ValidationError(w, "COA должен быть PDF-файлом")
		return
	}

	url, err := h.files.Upload(r.Context(), storage.ObjectKeyCoa(qr.Code), "application/pdf", file)
	if err != nil {
		h.logger.Error("Ошибка загрузки COA",
			slog.String("code", qr.Code),
			slog.String("error", err.Error()),
		)
		apierrors.StorageUnavailable(w, "не удалось загрузить файл")
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{URL: url})
}

// uploadedFile извлекает файл из multipart-формы (поле file).
// При ошибке ответ уже записан.
func (h *QrCodeHandler) uploadedFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		apierrors.ValidationError(w, "некорректная multipart-форма или файл больше 10 MB")
		return nil, nil, err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.ValidationError(w, "поле file обязательно")
		return nil, nil, err
	}
	return file, header, nil
}
