package flatfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// sequence — монотонный счётчик выданных идентификаторов, хранится в
// отдельном файле рядом с таблицей. Пустой path отключает хранение.
type sequence struct {
	path string
}

func (s sequence) current() (int, error) {
	if s.path == "" {
		return 0, nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("sequence file %s holds %q: %w", s.path, raw, errMalformed)
	}
	return value, nil
}

func (s sequence) store(value int) error {
	if s.path == "" {
		return nil
	}
	return writeAtomically(s.path, []byte(strconv.Itoa(value)+"\n"))
}

// nextSequence выбирает следующий номер: больше сохранённого счётчика, числа
// строк таблицы и максимального числового суффикса среди ключей с prefix.
// На файле без удалений и без счётчика это ровно lines+1.
func nextSequence(stored, lines int, keys []string, prefix string) int {
	highest := max(stored, lines)
	for _, key := range keys {
		suffix, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 {
			continue
		}
		highest = max(highest, n)
	}
	return highest + 1
}
