// archive.go — упаковка пакета PNG в ZIP-архив.
package qrimage

import (
	"archive/zip"
	"fmt"
	"io"
)

// FileName возвращает имя PNG-файла для кода.
func FileName(code string) string {
	return fmt.Sprintf("nadova-%s.png", code)
}

// ArchiveName возвращает имя ZIP-архива по первому и последнему коду пакета.
func ArchiveName(first, last string) string {
	return fmt.Sprintf("nadova-qr-codes-%s-to-%s.zip", first, last)
}

// WriteArchive пишет ZIP с успешно отрендеренными элементами пакета.
// Элементы с ошибкой пропускаются. Возвращает количество записанных файлов.
func WriteArchive(w io.Writer, items []BatchItem) (int, error) {
	zw := zip.NewWriter(w)

	written := 0
	for _, item := range items {
		if item.Err != nil {
			continue
		}
		f, err := zw.Create(FileName(item.Code))
		if err != nil {
			return written, fmt.Errorf("создание записи архива для %s: %w", item.Code, err)
		}
		if _, err := f.Write(item.PNG); err != nil {
			return written, fmt.Errorf("запись PNG для %s: %w", item.Code, err)
		}
		written++
	}

	if err := zw.Close(); err != nil {
		return written, fmt.Errorf("закрытие архива: %w", err)
	}
	return written, nil
}
