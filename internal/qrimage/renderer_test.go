package qrimage

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

// pngMagic — сигнатура PNG-файла.
var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRender(t *testing.T) {
	png, err := Render("https://nadovalabs.com/q42", "classic", 256)
	if err != nil {
		t.Fatalf("Render() ошибка: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("результат не является PNG")
	}
}

func TestRenderAllStyles(t *testing.T) {
	for _, id := range Styles() {
		t.Run(id, func(t *testing.T) {
			png, err := Render("https://nadovalabs.com/q1", id, 256)
			if err != nil {
				t.Fatalf("Render(%s) ошибка: %v", id, err)
			}
			if !bytes.HasPrefix(png, pngMagic) {
				t.Errorf("стиль %s: результат не является PNG", id)
			}
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	a, err := Render("https://nadovalabs.com/q7", "teal", 512)
	if err != nil {
		t.Fatalf("Render() ошибка: %v", err)
	}
	b, err := Render("https://nadovalabs.com/q7", "teal", 512)
	if err != nil {
		t.Fatalf("повторный Render() ошибка: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("повторный рендеринг дал другой PNG")
	}
}

func TestRenderValidation(t *testing.T) {
	if _, err := Render("x", "neon", 256); err == nil {
		t.Error("неизвестный стиль должен давать ошибку")
	}
	if _, err := Render("x", "classic", 300); err == nil {
		t.Error("недопустимый размер должен давать ошибку")
	}
}

func TestStylesPalette(t *testing.T) {
	ids := Styles()
	if len(ids) != 8 {
		t.Fatalf("Styles() = %d стилей, ожидается 8", len(ids))
	}

	s, ok := StyleByID("nadova")
	if !ok {
		t.Fatal("стиль nadova не найден")
	}
	if s.Foreground != "#0a0a0f" || s.Background != "#ffffff" {
		t.Errorf("nadova = %+v", s)
	}
}

func TestRenderBatchIsolatesFailures(t *testing.T) {
	// Слишком длинное содержимое не помещается в QR — ошибка одного
	// элемента не прерывает пакет.
	long := make([]byte, 8000)
	for i := range long {
		long[i] = 'a'
	}

	items := RenderBatch([]string{"q1", "q2"}, func(code string) string {
		if code == "q1" {
			return string(long)
		}
		return "https://nadovalabs.com/" + code
	}, "classic", 256)

	if len(items) != 2 {
		t.Fatalf("RenderBatch() = %d элементов, ожидается 2", len(items))
	}
	if items[0].Err == nil {
		t.Error("q1 должен завершиться ошибкой")
	}
	if items[1].Err != nil {
		t.Errorf("q2 ошибка: %v", items[1].Err)
	}
	if !bytes.HasPrefix(items[1].PNG, pngMagic) {
		t.Error("q2: результат не является PNG")
	}
}

func TestWriteArchive(t *testing.T) {
	items := []BatchItem{
		{Code: "q1", PNG: []byte("png-1")},
		{Code: "q2", Err: errors.New("ошибка рендеринга")},
		{Code: "q3", PNG: []byte("png-3")},
	}

	var buf bytes.Buffer
	written, err := WriteArchive(&buf, items)
	if err != nil {
		t.Fatalf("WriteArchive() ошибка: %v", err)
	}
	if written != 2 {
		t.Errorf("written = %d, ожидается 2", written)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("чтение архива: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("в архиве %d файлов, ожидается 2", len(zr.File))
	}
	if zr.File[0].Name != "nadova-q1.png" || zr.File[1].Name != "nadova-q3.png" {
		t.Errorf("имена файлов: %s, %s", zr.File[0].Name, zr.File[1].Name)
	}
}

func TestArchiveName(t *testing.T) {
	got := ArchiveName("q8", "q12")
	want := "nadova-qr-codes-q8-to-q12.zip"
	if got != want {
		t.Errorf("ArchiveName() = %q, ожидается %q", got, want)
	}
}
