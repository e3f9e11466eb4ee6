package flatfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Каждая запись занимает ровно одну строку файла. Значения с запятыми и
// кавычками экранируются по правилам CSV, переводы строк заменяются пробелом.

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// encodeLine кодирует поля записи в одну строку без завершающего перевода строки.
func encodeLine(fields []string) (string, error) {
	clean := make([]string, len(fields))
	for i, field := range fields {
		clean[i] = lineBreaks.Replace(field)
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(clean); err != nil {
		return "", fmt.Errorf("encode line: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("encode line: %w", err)
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}

// decodeLine разбирает одну строку файла на поля.
func decodeLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	// Файлы старого формата писались без экранирования, одиночная кавычка
	// внутри описания там допустима.
	r.LazyQuotes = true

	fields, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty line", errMalformed)
		}
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if _, err := r.Read(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: more than one record on a line", errMalformed)
	}
	return fields, nil
}
