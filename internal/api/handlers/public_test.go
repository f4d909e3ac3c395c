package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nadovalabs/verify-module/internal/domain/model"
	"github.com/nadovalabs/verify-module/internal/repository"
	"github.com/nadovalabs/verify-module/internal/service"
)

// memQrRepo — in-memory QrCodeRepository для тестов обработчиков.
type memQrRepo struct {
	byCode map[string]*model.QrCode
}

func newMemQrRepo() *memQrRepo {
	return &memQrRepo{byCode: make(map[string]*model.QrCode)}
}

func (m *memQrRepo) seed(qr *model.QrCode) {
	if qr.ID == "" {
		qr.ID = uuid.New().String()
	}
	m.byCode[qr.Code] = qr
}

func (m *memQrRepo) CreateBatch(_ context.Context, codes []string) (map[string]bool, error) {
	created := make(map[string]bool)
	for _, code := range codes {
		if _, ok := m.byCode[code]; ok {
			continue
		}
		m.byCode[code] = &model.QrCode{
			ID:     uuid.New().String(),
			Code:   code,
			Status: model.QrStatusDraft,
		}
		created[code] = true
	}
	return created, nil
}

func (m *memQrRepo) GetByID(_ context.Context, id string) (*model.QrCode, error) {
	for _, qr := range m.byCode {
		if qr.ID == id {
			return qr, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memQrRepo) GetByCode(_ context.Context, code string) (*model.QrCode, error) {
	if qr, ok := m.byCode[code]; ok {
		return qr, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memQrRepo) List(_ context.Context, _ *string, _ string, _, _ int) ([]*model.QrCode, error) {
	var result []*model.QrCode
	for _, qr := range m.byCode {
		result = append(result, qr)
	}
	return result, nil
}

func (m *memQrRepo) Count(_ context.Context, _ *string, _ string) (int, error) {
	return len(m.byCode), nil
}

func (m *memQrRepo) CountByStatus(_ context.Context) (map[string]int, error) {
	result := make(map[string]int)
	for _, qr := range m.byCode {
		result[qr.Status]++
	}
	return result, nil
}

func (m *memQrRepo) MaxCodeNumber(_ context.Context) (int, error) {
	return len(m.byCode), nil
}

func (m *memQrRepo) Update(_ context.Context, qr *model.QrCode) error {
	for _, existing := range m.byCode {
		if existing.ID == qr.ID {
			qr.UpdatedAt = time.Now()
			m.byCode[existing.Code] = qr
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memQrRepo) Delete(_ context.Context, id string) error {
	for code, qr := range m.byCode {
		if qr.ID == id {
			delete(m.byCode, code)
			return nil
		}
	}
	return repository.ErrNotFound
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// publicRouter собирает роутер публичного API поверх репозитория.
func publicRouter(repo repository.QrCodeRepository) http.Handler {
	h := NewPublicHandler(service.NewResolveService(repo, discardLogger()), discardLogger())
	r := chi.NewRouter()
	r.Get("/api/v1/verify/{code}", h.Verify)
	return r
}

func TestVerifyActive(t *testing.T) {
	repo := newMemQrRepo()
	name := "BPC-157"
	repo.seed(&model.QrCode{Code: "q42", Status: model.QrStatusActive, ProductName: &name})

	w := httptest.NewRecorder()
	publicRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/verify/q42", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, ожидается 200: %s", w.Code, w.Body.String())
	}

	var view struct {
		Code        string  `json:"code"`
		Status      string  `json:"status"`
		Registering bool    `json:"registering"`
		ProductName *string `json:"product_name"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if view.Code != "q42" || view.Status != "active" || view.Registering {
		t.Errorf("view = %+v", view)
	}
	if view.ProductName == nil || *view.ProductName != "BPC-157" {
		t.Errorf("ProductName = %v", view.ProductName)
	}
}

func TestVerifyDraftHidesFields(t *testing.T) {
	repo := newMemQrRepo()
	name := "скрытое имя"
	repo.seed(&model.QrCode{Code: "q7", Status: model.QrStatusDraft, ProductName: &name})

	w := httptest.NewRecorder()
	publicRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/verify/q7", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, ожидается 200", w.Code)
	}
	if strings.Contains(w.Body.String(), "скрытое имя") {
		t.Error("draft-ответ содержит продуктовые поля")
	}
	if !strings.Contains(w.Body.String(), `"registering":true`) {
		t.Errorf("в ответе нет registering: %s", w.Body.String())
	}
}

func TestVerifyNotFoundEnvelope(t *testing.T) {
	for _, token := range []string{"q999", "abc"} {
		w := httptest.NewRecorder()
		publicRouter(newMemQrRepo()).ServeHTTP(w,
			httptest.NewRequest(http.MethodGet, "/api/v1/verify/"+token, nil))

		if w.Code != http.StatusNotFound {
			t.Errorf("token=%s: status = %d, ожидается 404", token, w.Code)
		}
		var envelope struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("разбор тела ошибки: %v", err)
		}
		if envelope.Error.Code != "NOT_FOUND" {
			t.Errorf("code = %q, ожидается NOT_FOUND", envelope.Error.Code)
		}
	}
}

// --- Админские обработчики записей ---

// qrRouter собирает админский роутер записей без middleware аутентификации.
func qrRouter(repo repository.QrCodeRepository) http.Handler {
	allocator := service.NewAllocatorService(repo, discardLogger())
	qrCodes := service.NewQrCodeService(repo, discardLogger())
	h := NewQrCodeHandler(allocator, qrCodes, nil, "https://nadovalabs.com", discardLogger())

	r := chi.NewRouter()
	r.Post("/api/v1/admin/qr-codes/generate", h.Generate)
	r.Post("/api/v1/admin/qr-codes/archive", h.Archive)
	r.Get("/api/v1/admin/qr-codes/stats", h.Stats)
	r.Get("/api/v1/admin/qr-codes/{id}", h.Get)
	r.Put("/api/v1/admin/qr-codes/{id}", h.Update)
	r.Get("/api/v1/admin/qr-codes/{id}/png", h.RenderPNG)
	return r
}

func TestGenerateEndpoint(t *testing.T) {
	repo := newMemQrRepo()
	repo.seed(&model.QrCode{Code: "q2", Status: model.QrStatusActive})

	body := bytes.NewBufferString(`{"mode":"range","range_start":1,"range_end":3}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/qr-codes/generate", body)
	w := httptest.NewRecorder()
	qrRouter(repo).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, ожидается 201: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Created []string `json:"created"`
		Skipped []string `json:"skipped"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if len(resp.Created) != 2 || resp.Created[0] != "q1" || resp.Created[1] != "q3" {
		t.Errorf("created = %v, ожидается [q1 q3]", resp.Created)
	}
	if len(resp.Skipped) != 1 || resp.Skipped[0] != "q2" {
		t.Errorf("skipped = %v, ожидается [q2]", resp.Skipped)
	}
}

func TestGenerateAllExistEndpoint(t *testing.T) {
	repo := newMemQrRepo()
	repo.seed(&model.QrCode{Code: "q1", Status: model.QrStatusDraft})

	body := bytes.NewBufferString(`{"mode":"custom","custom":"q1"}`)
	w := httptest.NewRecorder()
	qrRouter(repo).ServeHTTP(w,
		httptest.NewRequest(http.MethodPost, "/api/v1/admin/qr-codes/generate", body))

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, ожидается 409: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "ALL_ALREADY_EXIST") {
		t.Errorf("тело: %s", w.Body.String())
	}
}

func TestUpdateEndpointInvalidStatus(t *testing.T) {
	repo := newMemQrRepo()
	repo.seed(&model.QrCode{ID: "id-1", Code: "q1", Status: model.QrStatusDraft})

	body := bytes.NewBufferString(`{"status":"archived"}`)
	w := httptest.NewRecorder()
	qrRouter(repo).ServeHTTP(w,
		httptest.NewRequest(http.MethodPut, "/api/v1/admin/qr-codes/id-1", body))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, ожидается 400: %s", w.Code, w.Body.String())
	}
}

func TestRenderPNGEndpoint(t *testing.T) {
	repo := newMemQrRepo()
	repo.seed(&model.QrCode{ID: "id-1", Code: "q42", Status: model.QrStatusActive})

	w := httptest.NewRecorder()
	qrRouter(repo).ServeHTTP(w,
		httptest.NewRequest(http.MethodGet, "/api/v1/admin/qr-codes/id-1/png?style=teal&size=256", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "nadova-q42.png") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("тело не является PNG")
	}
}

func TestArchiveEndpoint(t *testing.T) {
	repo := newMemQrRepo()

	body := bytes.NewBufferString(`{"codes":["q8","q9"],"style":"classic","size":256}`)
	w := httptest.NewRecorder()
	qrRouter(repo).ServeHTTP(w,
		httptest.NewRequest(http.MethodPost, "/api/v1/admin/qr-codes/archive", body))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "nadova-qr-codes-q8-to-q9.zip") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}
