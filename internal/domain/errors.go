package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound возвращается, если запись с указанным ключом отсутствует.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey возвращается при вставке записи с уже занятым ключом.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidInput — некорректные входные данные (числа, обязательные поля).
	ErrInvalidInput = errors.New("invalid input")
	// ErrDishNotFound — заказ ссылается на блюдо, которого нет в каталоге.
	ErrDishNotFound = errors.New("dish not found")
	// ErrAlreadyCanceled — повторная отмена уже отменённого заказа.
	ErrAlreadyCanceled = errors.New("order already canceled")
	// ErrStorageUnavailable — любая ошибка ввода-вывода файлового хранилища.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrMalformedRecord — строку файла не удалось разобрать в запись.
	ErrMalformedRecord = errors.New("malformed record")

	// Ошибки инвариантов блюда и заказа. Все они оборачивают ErrInvalidInput.
	ErrDishIDRequired     = fmt.Errorf("%w: dish id is required", ErrInvalidInput)
	ErrDishNameRequired   = fmt.Errorf("%w: dish name is required", ErrInvalidInput)
	ErrPriceNegative      = fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
	ErrPrepTimeNegative   = fmt.Errorf("%w: preparation time must be non-negative", ErrInvalidInput)
	ErrOrderIDRequired    = fmt.Errorf("%w: order id is required", ErrInvalidInput)
	ErrOrderStatusInvalid = fmt.Errorf("%w: unknown order status", ErrInvalidInput)
	ErrCustomerRequired   = fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	ErrQuantityInvalid    = fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidInput)
	ErrAmountNegative     = fmt.Errorf("%w: total cost must be non-negative", ErrInvalidInput)
	ErrAmountOverflow     = fmt.Errorf("%w: amount is too large", ErrInvalidInput)
)

// IsNotFound проверяет, что ошибка означает отсутствие записи.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStorageUnavailable проверяет, является ли ошибка сбоем хранилища.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// JoinInvariantErrors склеивает замечания ValidateInvariants в одну ошибку.
func JoinInvariantErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
