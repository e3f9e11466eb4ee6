package domain

// RecordStore описывает таблицу однотипных записей с ключевым полем.
// Порядок записей — порядок вставки; реализации не переупорядочивают строки.
type RecordStore[T any] interface {
	// List возвращает все записи в порядке хранения.
	List() ([]T, error)
	// FindByKey возвращает первую запись с ключом key или ErrNotFound.
	FindByKey(key string) (T, error)
	// Search возвращает все записи, для которых match вернул true.
	Search(match func(T) bool) ([]T, error)
	// Insert добавляет запись в конец. ErrDuplicateKey, если ключ уже занят.
	Insert(record T) error
	// UpdateByKey заменяет запись результатом mutate на том же месте.
	// Ошибка mutate прерывает операцию без записи и возвращается как есть.
	UpdateByKey(key string, mutate func(T) (T, error)) (T, error)
	// DeleteByKey удаляет запись с ключом key или возвращает ErrNotFound.
	DeleteByKey(key string) error
	// AppendWithGeneratedID выдаёт следующий идентификатор вида prefix+N,
	// строит запись через build и добавляет её в конец.
	AppendWithGeneratedID(prefix string, build func(id string) (T, error)) (T, error)
	// Each обходит записи за один проход; ошибка fn останавливает обход.
	Each(fn func(T) error) error
}

// DishStore — таблица блюд.
type DishStore = RecordStore[Dish]

// OrderStore — таблица заказов.
type OrderStore = RecordStore[Order]

// Aggregate сворачивает все записи хранилища за один проход.
func Aggregate[T, R any](store RecordStore[T], initial R, fold func(R, T) R) (R, error) {
	acc := initial
	err := store.Each(func(record T) error {
		acc = fold(acc, record)
		return nil
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return acc, nil
}
