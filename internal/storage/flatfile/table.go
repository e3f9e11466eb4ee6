// Package flatfile хранит записи в текстовых файлах: одна запись — одна строка,
// поля разделены запятыми. Любое изменение переписывает файл целиком через
// временный файл и rename, поэтому оборванная запись не портит таблицу.
package flatfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/eats/internal/domain"
	"github.com/vladislavdragonenkov/eats/internal/metrics"
)

const maxLineSize = 1 << 20

var errMalformed = domain.ErrMalformedRecord

// Options задаёт необязательные зависимости таблицы.
type Options struct {
	Logger       *log.Entry
	Metrics      *metrics.StoreMetrics
	SequencePath string
}

// Option настраивает Table.
type Option func(*Options)

// WithLogger задаёт logger таблицы.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithMetrics задаёт метрики операций.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithSequenceFile включает монотонный счётчик идентификаторов в файле path.
func WithSequenceFile(path string) Option {
	return func(opts *Options) {
		opts.SequencePath = path
	}
}

// row — строка файла. Повреждённые строки сохраняются как есть (raw),
// чтобы перезапись таблицы не теряла данные.
type row[T any] struct {
	raw    string
	record T
	valid  bool
}

// Table — таблица записей типа T поверх одного файла.
type Table[T any] struct {
	mu      sync.Mutex
	path    string
	schema  Schema[T]
	seq     sequence
	logger  *log.Entry
	metrics *metrics.StoreMetrics
}

// Open открывает таблицу, создавая файл и каталог при необходимости.
// Ошибка доступа к файлу возвращается как domain.ErrStorageUnavailable.
func Open[T any](path string, schema Schema[T], options ...Option) (*Table[T], error) {
	if err := schema.validate(); err != nil {
		return nil, err
	}

	var opts Options
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "flatfile")
	}

	t := &Table[T]{
		path:    path,
		schema:  schema,
		seq:     sequence{path: opts.SequencePath},
		logger:  logger.WithField("table", schema.Name),
		metrics: opts.Metrics,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, t.storageError("create dir", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, t.storageError("open", err)
	}
	if err := f.Close(); err != nil {
		return nil, t.storageError("close", err)
	}

	return t, nil
}

// Path возвращает путь к файлу таблицы.
func (t *Table[T]) Path() string {
	return t.path
}

// Ping проверяет, что файл таблицы доступен для чтения и записи.
func (t *Table[T]) Ping() error {
	f, err := os.OpenFile(t.path, os.O_RDWR, 0)
	if err != nil {
		return t.storageError("open", err)
	}
	if err := f.Close(); err != nil {
		return t.storageError("close", err)
	}
	return nil
}

// List возвращает все корректные записи в порядке файла.
func (t *Table[T]) List() (result []T, err error) {
	defer t.observe("list", time.Now(), &err)
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.load()
	if err != nil {
		return nil, err
	}
	result = make([]T, 0, len(rows))
	for _, r := range rows {
		if r.valid {
			result = append(result, r.record)
		}
	}
	return result, nil
}

// FindByKey возвращает первую запись с ключом key.
func (t *Table[T]) FindByKey(key string) (record T, err error) {
	defer t.observe("find", time.Now(), &err)
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.load()
	if err != nil {
		return record, err
	}
	idx := t.indexOf(rows, key)
	if idx < 0 {
		return record, fmt.Errorf("%s %q: %w", t.schema.Name, key, domain.ErrNotFound)
	}
	return rows[idx].record, nil
}

// Search возвращает все записи, удовлетворяющие match, в порядке файла.
func (t *Table[T]) Search(match func(T) bool) (result []T, err error) {
	defer t.observe("search", time.Now(), &err)
	t.mu.Lock()
	defer t.mu.Unlock()

	result = []T{}
	err = t.scan(func(record T) error {
		if match(record) {
			result = append(result, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Insert добавляет запись в конец файла.
func (t *Table[T]) Insert(record T) (err error) {
	defer t.observe("insert", time.Now(), &err)
	t.mu.Lock()
	defer t.mu.Unlock()

	key := t.schema.Key(record)
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: %s key is empty", domain.ErrInvalidInput, t.schema.Name)
	}

	rows, err := t.load()
	if err != nil {
		return err
	}
	if t.indexOf(rows, key) >= 0 {
		return fmt.Errorf("%s %q: %w", t.schema.Name, key, domain.ErrDuplicateKey)
	}

	rows = append(rows, row[T]{record: record, valid: true})
	return t.save(rows)
}

// UpdateByKey заменяет запись с ключом key результатом mutate, не меняя порядок строк.
func (t *Table[T]) UpdateByKey(key string, mutate func(T) (T, error)) (updated T, err error) {
	defer t.observe("update", time.Now(), &err)
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.load()
	if err != nil {
		return updated, err
	}
	idx := t.indexOf(rows, key)
	if idx < 0 {
		return updated, fmt.Errorf("%s %q: %w", t.schema.Name, key, domain.ErrNotFound)
	}

	next, err := mutate(rows[idx].record)
	if err != nil {
		return updated, err
	}
	if t.schema.Key(next) != key {
		return updated, fmt.Errorf("%w: %s key cannot change from %q to %q",
			domain.ErrInvalidInput, t.schema.Name, key, t.schema.Key(next))
	}

	rows[idx] = row[T]{record: next, valid: true}
	if err := t.save(rows); err != nil {
		return updated, err
	}
	return next, nil
}

// DeleteByKey удаляет строку с ключом key.
func (t *Table[T]) DeleteByKey(key string) (err error) {
	defer t.observe("delete", time.Now(), &err)
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.load()
	if err != nil {
		return err
	}
	idx := t.indexOf(rows, key)
	if idx < 0 {
		return fmt.Errorf("%s %q: %w", t.schema.Name, key, domain.ErrNotFound)
	}

	rows = append(rows[:idx], rows[idx+1:]...)
	return t.save(rows)
}

// AppendWithGeneratedID выдаёт идентификатор prefix+N и добавляет запись,
// построенную build. Счётчик (если включён) сохраняется после записи таблицы.
func (t *Table[T]) AppendWithGeneratedID(prefix string, build func(id string) (T, error)) (record T, err error) {
	defer t.observe("append", time.Now(), &err)
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.load()
	if err != nil {
		return record, err
	}
	stored, err := t.seq.current()
	if err != nil {
		return record, t.storageError("read sequence", err)
	}

	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.valid {
			keys = append(keys, t.schema.Key(r.record))
		}
	}
	n := nextSequence(stored, len(rows), keys, prefix)
	id := prefix + strconv.Itoa(n)

	record, err = build(id)
	if err != nil {
		var zero T
		return zero, err
	}
	if t.schema.Key(record) != id {
		var zero T
		return zero, fmt.Errorf("%w: built %s record has key %q, want %q",
			domain.ErrInvalidInput, t.schema.Name, t.schema.Key(record), id)
	}

	rows = append(rows, row[T]{record: record, valid: true})
	if err := t.save(rows); err != nil {
		var zero T
		return zero, err
	}
	if err := t.seq.store(n); err != nil {
		// Таблица уже записана; следующий вызов восстановит номер по ключам.
		t.logger.WithError(err).WithField("sequence", n).Warn("failed to persist id sequence")
	}
	return record, nil
}

// Each обходит корректные записи за один проход по файлу.
// fn не должен обращаться к этой же таблице.
func (t *Table[T]) Each(fn func(T) error) (err error) {
	defer t.observe("each", time.Now(), &err)
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.scan(fn)
}

func (t *Table[T]) indexOf(rows []row[T], key string) int {
	for i, r := range rows {
		if r.valid && t.schema.Key(r.record) == key {
			return i
		}
	}
	return -1
}

// load читает файл целиком, сохраняя повреждённые строки.
func (t *Table[T]) load() ([]row[T], error) {
	var rows []row[T]
	err := t.readLines(func(line string, record T, valid bool) error {
		rows = append(rows, row[T]{raw: line, record: record, valid: valid})
		return nil
	})
	return rows, err
}

// scan передаёт fn только корректные записи.
func (t *Table[T]) scan(fn func(T) error) error {
	return t.readLines(func(_ string, record T, valid bool) error {
		if !valid {
			return nil
		}
		return fn(record)
	})
}

func (t *Table[T]) readLines(visit func(line string, record T, valid bool) error) error {
	f, err := os.Open(t.path)
	if err != nil {
		return t.storageError("open", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo, malformed := 0, 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		record, err := t.decode(line)
		if err != nil {
			malformed++
			t.logger.WithFields(log.Fields{
				"line": lineNo,
				"path": t.path,
			}).WithError(err).Warn("skipping malformed line")
			if err := visit(line, record, false); err != nil {
				return err
			}
			continue
		}
		if err := visit(line, record, true); err != nil {
			return err
		}
	}
	t.metrics.RecordMalformed(t.schema.Name, malformed)

	if err := scanner.Err(); err != nil {
		return t.storageError("read", err)
	}
	return nil
}

func (t *Table[T]) decode(line string) (T, error) {
	var zero T
	fields, err := decodeLine(line)
	if err != nil {
		return zero, err
	}
	if len(fields) != len(t.schema.Fields) {
		return zero, fmt.Errorf("%w: expected %d fields, got %d", errMalformed, len(t.schema.Fields), len(fields))
	}
	return t.schema.Decode(fields)
}

func (t *Table[T]) save(rows []row[T]) error {
	var sb strings.Builder
	for _, r := range rows {
		line := r.raw
		if r.valid {
			encoded, err := encodeLine(t.schema.Encode(r.record))
			if err != nil {
				return err
			}
			line = encoded
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if err := writeAtomically(t.path, []byte(sb.String())); err != nil {
		return t.storageError("write", err)
	}
	t.logger.WithField("rows", len(rows)).Debug("table rewritten")
	return nil
}

func (t *Table[T]) storageError(op string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", domain.ErrStorageUnavailable, op, t.path, err)
}

func (t *Table[T]) observe(op string, started time.Time, errp *error) {
	t.metrics.ObserveOperation(t.schema.Name, op, started, *errp)
}

var (
	_ domain.DishStore  = (*Table[domain.Dish])(nil)
	_ domain.OrderStore = (*Table[domain.Order])(nil)
)
