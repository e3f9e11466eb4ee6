package memory

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/eats/internal/domain"
)

// recordStoreInMemory — in-memory реализация RecordStore с порядком вставки.
type recordStoreInMemory[T any] struct {
	mu    sync.RWMutex
	name  string
	key   func(T) string
	items []T
	// seq — последний выданный номер, не уменьшается при удалениях.
	seq int
}

// NewRecordStore возвращает in-memory таблицу для локальной разработки и тестов.
func NewRecordStore[T any](name string, key func(T) string) domain.RecordStore[T] {
	return &recordStoreInMemory[T]{name: name, key: key}
}

// NewDishStore возвращает in-memory таблицу блюд.
func NewDishStore() domain.DishStore {
	return NewRecordStore("dishes", func(d domain.Dish) string { return d.ID })
}

// NewOrderStore возвращает in-memory таблицу заказов.
func NewOrderStore() domain.OrderStore {
	return NewRecordStore("orders", func(o domain.Order) string { return o.ID })
}

// List возвращает копию всех записей.
func (s *recordStoreInMemory[T]) List() ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, len(s.items))
	copy(result, s.items)
	return result, nil
}

// FindByKey возвращает запись или ErrNotFound, если её нет.
func (s *recordStoreInMemory[T]) FindByKey(key string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(key)
	if idx < 0 {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", s.name, key, domain.ErrNotFound)
	}
	return s.items[idx], nil
}

// Search возвращает записи, удовлетворяющие match.
func (s *recordStoreInMemory[T]) Search(match func(T) bool) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []T{}
	for _, item := range s.items {
		if match(item) {
			result = append(result, item)
		}
	}
	return result, nil
}

// Insert сохраняет новую запись, если ключ ещё не занят.
func (s *recordStoreInMemory[T]) Insert(record T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.key(record)
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: %s key is empty", domain.ErrInvalidInput, s.name)
	}
	if s.indexOf(key) >= 0 {
		return fmt.Errorf("%s %q: %w", s.name, key, domain.ErrDuplicateKey)
	}
	s.items = append(s.items, record)
	return nil
}

// UpdateByKey заменяет запись на месте.
func (s *recordStoreInMemory[T]) UpdateByKey(key string, mutate func(T) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	idx := s.indexOf(key)
	if idx < 0 {
		return zero, fmt.Errorf("%s %q: %w", s.name, key, domain.ErrNotFound)
	}

	next, err := mutate(s.items[idx])
	if err != nil {
		return zero, err
	}
	if s.key(next) != key {
		return zero, fmt.Errorf("%w: %s key cannot change from %q to %q", domain.ErrInvalidInput, s.name, key, s.key(next))
	}
	s.items[idx] = next
	return next, nil
}

// DeleteByKey удаляет запись.
func (s *recordStoreInMemory[T]) DeleteByKey(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(key)
	if idx < 0 {
		return fmt.Errorf("%s %q: %w", s.name, key, domain.ErrNotFound)
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return nil
}

// AppendWithGeneratedID выдаёт следующий номер и добавляет запись.
func (s *recordStoreInMemory[T]) AppendWithGeneratedID(prefix string, build func(id string) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	n := max(s.seq, len(s.items)) + 1
	id := prefix + strconv.Itoa(n)

	record, err := build(id)
	if err != nil {
		return zero, err
	}
	if s.key(record) != id {
		return zero, fmt.Errorf("%w: built %s record has key %q, want %q", domain.ErrInvalidInput, s.name, s.key(record), id)
	}
	if s.indexOf(id) >= 0 {
		return zero, fmt.Errorf("%s %q: %w", s.name, id, domain.ErrDuplicateKey)
	}

	s.items = append(s.items, record)
	s.seq = n
	return record, nil
}

// Each обходит записи в порядке вставки.
func (s *recordStoreInMemory[T]) Each(fn func(T) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if err := fn(item); err != nil {
			return err
		}
	}
	return nil
}

func (s *recordStoreInMemory[T]) indexOf(key string) int {
	for i, item := range s.items {
		if s.key(item) == key {
			return i
		}
	}
	return -1
}

var _ domain.RecordStore[domain.Dish] = (*recordStoreInMemory[domain.Dish])(nil)
