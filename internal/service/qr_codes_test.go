package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nadovalabs/verify-module/internal/domain/model"
)

func TestSanitizeExtraFields(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]string
		want int
	}{
		{"nil", nil, 0},
		{"пустая карта", map[string]string{}, 0},
		{"пустой ключ отбрасывается", map[string]string{"": "x", "a": "1"}, 1},
		{"пробельный ключ отбрасывается", map[string]string{"   ": "x"}, 0},
		{"обычные ключи сохраняются", map[string]string{"a": "1", "b": ""}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeExtraFields(tt.in)
			if len(got) != tt.want {
				t.Errorf("sanitizeExtraFields() = %v, ожидается %d ключей", got, tt.want)
			}
		})
	}
}

func TestQrUpdateInvalidStatus(t *testing.T) {
	repo := newFakeQrRepo()
	repo.seed(&model.QrCode{ID: "id-1", Code: "q1", Status: model.QrStatusDraft})
	svc := NewQrCodeService(repo, testLogger())

	_, err := svc.Update(context.Background(), "id-1", QrUpdateRequest{Status: "archived"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, ожидается ErrValidation", err)
	}
}

func TestQrUpdateFiltersBlankExtraKeys(t *testing.T) {
	repo := newFakeQrRepo()
	repo.seed(&model.QrCode{ID: "id-1", Code: "q1", Status: model.QrStatusDraft})
	svc := NewQrCodeService(repo, testLogger())

	name := "TB-500"
	qr, err := svc.Update(context.Background(), "id-1", QrUpdateRequest{
		Status:      model.QrStatusActive,
		ProductName: &name,
		ExtraFields: map[string]string{"  ": "dropped", "Origin": "US"},
	})
	if err != nil {
		t.Fatalf("Update() ошибка: %v", err)
	}
	if len(qr.ExtraFields) != 1 || qr.ExtraFields["Origin"] != "US" {
		t.Errorf("ExtraFields = %v, ожидается только Origin=US", qr.ExtraFields)
	}
	if qr.Status != model.QrStatusActive {
		t.Errorf("Status = %q, ожидается active", qr.Status)
	}
}

func TestQrUpdateNotFound(t *testing.T) {
	svc := NewQrCodeService(newFakeQrRepo(), testLogger())

	_, err := svc.Update(context.Background(), "missing", QrUpdateRequest{Status: model.QrStatusDraft})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, ожидается ErrNotFound", err)
	}
}

func TestQrStats(t *testing.T) {
	repo := newFakeQrRepo()
	repo.seed(&model.QrCode{Code: "q1", Status: model.QrStatusDraft})
	repo.seed(&model.QrCode{Code: "q2", Status: model.QrStatusActive})
	repo.seed(&model.QrCode{Code: "q3", Status: model.QrStatusActive})
	repo.seed(&model.QrCode{Code: "q4", Status: model.QrStatusRecalled})
	svc := NewQrCodeService(repo, testLogger())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() ошибка: %v", err)
	}
	if stats.Total != 4 || stats.Draft != 1 || stats.Active != 2 || stats.Recalled != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}
