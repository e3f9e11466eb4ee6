package domain

import "strings"

// Dish — позиция каталога.
type Dish struct {
	ID          string
	Name        string
	Description string
	// Price — цена в целых денежных единицах (tk).
	Price           int64
	PrepTimeMinutes int
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// NormalizeText убирает крайние пробелы и заменяет переводы строк пробелом:
// запись хранится в одной строке файла.
func NormalizeText(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}

// ValidateInvariants проверяет блюдо перед записью в каталог.
func (d *Dish) ValidateInvariants() []error {
	var errs []error

	if strings.TrimSpace(d.ID) == "" {
		errs = append(errs, ErrDishIDRequired)
	}
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, ErrDishNameRequired)
	}
	if d.Price < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	if d.PrepTimeMinutes < 0 {
		errs = append(errs, ErrPrepTimeNegative)
	}

	return errs
}
