package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nadovalabs/verify-module/internal/domain/model"
)

func strPtr(s string) *string { return &s }

// seedFull возвращает полностью заполненную запись в заданном статусе.
func seedFull(code, status string) *model.QrCode {
	exp := time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC)
	return &model.QrCode{
		Code:           code,
		Status:         status,
		ProductName:    strPtr("BPC-157"),
		BatchNumber:    strPtr("B-2026-03"),
		ExpirationDate: &exp,
		Concentration:  strPtr("5mg"),
		Purity:         strPtr("99.8%"),
		Description:    strPtr("Research peptide"),
		StorageInfo:    strPtr("Store at -20C"),
		ProductImage:   strPtr("https://cdn.example.com/images/q42.png"),
		CoaURL:         strPtr("https://cdn.example.com/coa/q42.pdf"),
		ExtraFields:    map[string]string{"Manufacturer": "Acme"},
	}
}

func TestResolveActive(t *testing.T) {
	repo := newFakeQrRepo()
	repo.seed(seedFull("q42", model.QrStatusActive))
	svc := NewResolveService(repo, testLogger())

	view, err := svc.Resolve(context.Background(), "q42")
	if err != nil {
		t.Fatalf("Resolve() ошибка: %v", err)
	}
	if view.Code != "q42" || view.Status != model.QrStatusActive {
		t.Errorf("view = %+v, ожидается code=q42 status=active", view)
	}
	if view.Registering {
		t.Error("Registering = true для active-записи")
	}
	if view.Banner != BannerNone {
		t.Errorf("Banner = %q, ожидается пустой", view.Banner)
	}
	if view.ProductName == nil || *view.ProductName != "BPC-157" {
		t.Errorf("ProductName = %v, ожидается BPC-157", view.ProductName)
	}
	if view.ExpirationDate == nil || *view.ExpirationDate != "2027-03-15" {
		t.Errorf("ExpirationDate = %v, ожидается 2027-03-15", view.ExpirationDate)
	}
	if view.ExtraFields["Manufacturer"] != "Acme" {
		t.Errorf("ExtraFields = %v", view.ExtraFields)
	}
}

// Draft скрывает продуктовые поля, даже если они заполнены в БД.
func TestResolveDraftHidesFields(t *testing.T) {
	repo := newFakeQrRepo()
	repo.seed(seedFull("q7", model.QrStatusDraft))
	svc := NewResolveService(repo, testLogger())

	view, err := svc.Resolve(context.Background(), "q7")
	if err != nil {
		t.Fatalf("Resolve() ошибка: %v", err)
	}
	if !view.Registering {
		t.Error("Registering = false для draft-записи")
	}
	if view.ProductName != nil || view.BatchNumber != nil || view.ExpirationDate != nil ||
		view.Concentration != nil || view.Purity != nil || view.Description != nil ||
		view.StorageInfo != nil || view.ProductImage != nil || view.CoaURL != nil ||
		view.ExtraFields != nil {
		t.Errorf("draft-проекция содержит продуктовые поля: %+v", view)
	}
}

func TestResolveBanner(t *testing.T) {
	tests := []struct {
		status string
		banner string
	}{
		{model.QrStatusExpired, BannerExpired},
		{model.QrStatusRecalled, BannerRecalled},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			repo := newFakeQrRepo()
			repo.seed(seedFull("q1", tt.status))
			svc := NewResolveService(repo, testLogger())

			view, err := svc.Resolve(context.Background(), "q1")
			if err != nil {
				t.Fatalf("Resolve() ошибка: %v", err)
			}
			if view.Banner != tt.banner {
				t.Errorf("Banner = %q, ожидается %q", view.Banner, tt.banner)
			}
			// Карточка остаётся полной
			if view.ProductName == nil {
				t.Error("ProductName скрыт для статуса " + tt.status)
			}
		})
	}
}

// Регистр токена не важен: Q42 разрешается как q42.
func TestResolveCaseInsensitive(t *testing.T) {
	repo := newFakeQrRepo()
	repo.seed(seedFull("q42", model.QrStatusActive))
	svc := NewResolveService(repo, testLogger())

	view, err := svc.Resolve(context.Background(), "Q42")
	if err != nil {
		t.Fatalf("Resolve(Q42) ошибка: %v", err)
	}
	if view.Code != "q42" {
		t.Errorf("Code = %q, ожидается q42", view.Code)
	}
}

// Токен, не совпадающий с форматом кода, отсекается без обращения к БД.
func TestResolveMalformedTokenSkipsStore(t *testing.T) {
	repo := newFakeQrRepo()
	svc := NewResolveService(repo, testLogger())

	for _, token := range []string{"abc", "q", "qx1", "42", "q-1", ""} {
		if _, err := svc.Resolve(context.Background(), token); !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve(%q) = %v, ожидается ErrNotFound", token, err)
		}
	}
	if repo.getCalls != 0 {
		t.Errorf("GetByCode вызван %d раз для некорректных токенов", repo.getCalls)
	}
}

func TestResolveUnknownCode(t *testing.T) {
	repo := newFakeQrRepo()
	svc := NewResolveService(repo, testLogger())

	if _, err := svc.Resolve(context.Background(), "q999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, ожидается ErrNotFound", err)
	}
	if repo.getCalls != 1 {
		t.Errorf("GetByCode вызван %d раз, ожидается 1", repo.getCalls)
	}
}

// Повторное разрешение не меняет ни запись, ни проекцию.
func TestResolveIdempotent(t *testing.T) {
	repo := newFakeQrRepo()
	repo.seed(seedFull("q5", model.QrStatusActive))
	svc := NewResolveService(repo, testLogger())

	first, err := svc.Resolve(context.Background(), "q5")
	if err != nil {
		t.Fatalf("Resolve() ошибка: %v", err)
	}
	second, err := svc.Resolve(context.Background(), "q5")
	if err != nil {
		t.Fatalf("повторный Resolve() ошибка: %v", err)
	}
	if *first.ProductName != *second.ProductName || first.Status != second.Status {
		t.Error("повторное разрешение дало другую проекцию")
	}
}
