package flatfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/eats/internal/domain"
)

// Schema описывает, как запись типа T раскладывается в поля строки.
type Schema[T any] struct {
	// Name используется в логах и метриках.
	Name string
	// Fields — упорядоченный список полей строки.
	Fields []string
	// Key возвращает значение ключевого поля записи.
	Key func(T) string
	// Encode раскладывает запись в поля в порядке Fields.
	Encode func(T) []string
	// Decode собирает запись из полей. Ошибка означает, что строка повреждена.
	Decode func(fields []string) (T, error)
}

func (s Schema[T]) validate() error {
	if s.Name == "" || len(s.Fields) == 0 {
		return fmt.Errorf("schema name and fields are required")
	}
	if s.Key == nil || s.Encode == nil || s.Decode == nil {
		return fmt.Errorf("schema %s: key, encode and decode are required", s.Name)
	}
	return nil
}

// Поля файла блюд: id,name,description,price,prepTimeMinutes.
var dishFields = []string{"id", "name", "description", "price", "prepTimeMinutes"}

// Поля файла заказов:
// id,customerName,customerAddress,customerPhone,dishId,dishName,quantity,totalCost,status.
var orderFields = []string{
	"id", "customerName", "customerAddress", "customerPhone",
	"dishId", "dishName", "quantity", "totalCost", "status",
}

// DishSchema возвращает схему файла блюд.
func DishSchema() Schema[domain.Dish] {
	return Schema[domain.Dish]{
		Name:   "dishes",
		Fields: dishFields,
		Key:    func(d domain.Dish) string { return d.ID },
		Encode: func(d domain.Dish) []string {
			return []string{
				d.ID,
				d.Name,
				d.Description,
				strconv.FormatInt(d.Price, 10),
				strconv.Itoa(d.PrepTimeMinutes),
			}
		},
		Decode: decodeDish,
	}
}

func decodeDish(fields []string) (domain.Dish, error) {
	price, err := parseNonNegative(fields[3], "price")
	if err != nil {
		return domain.Dish{}, err
	}
	prep, err := parseNonNegative(fields[4], "prepTimeMinutes")
	if err != nil {
		return domain.Dish{}, err
	}
	id := strings.TrimSpace(fields[0])
	if id == "" {
		return domain.Dish{}, fmt.Errorf("%w: empty id", errMalformed)
	}

	return domain.Dish{
		ID:              id,
		Name:            fields[1],
		Description:     fields[2],
		Price:           price,
		PrepTimeMinutes: int(prep),
	}, nil
}

// OrderSchema возвращает схему файла заказов.
// У отменённого заказа поля со 2 по 8 заменяются на domain.CanceledPlaceholder.
func OrderSchema() Schema[domain.Order] {
	return Schema[domain.Order]{
		Name:   "orders",
		Fields: orderFields,
		Key:    func(o domain.Order) string { return o.ID },
		Encode: encodeOrder,
		Decode: decodeOrder,
	}
}

func encodeOrder(o domain.Order) []string {
	if o.IsCanceled() {
		p := domain.CanceledPlaceholder
		return []string{o.ID, p, p, p, p, p, p, p, string(domain.OrderStatusCanceled)}
	}
	return []string{
		o.ID,
		o.CustomerName,
		o.CustomerAddress,
		o.CustomerPhone,
		o.DishID,
		o.DishName,
		strconv.Itoa(o.Quantity),
		strconv.FormatInt(o.TotalCost, 10),
		string(o.Status),
	}
}

func decodeOrder(fields []string) (domain.Order, error) {
	id := strings.TrimSpace(fields[0])
	if id == "" {
		return domain.Order{}, fmt.Errorf("%w: empty id", errMalformed)
	}

	status := domain.OrderStatus(strings.TrimSpace(fields[8]))
	switch status {
	case domain.OrderStatusCanceled:
		return domain.Order{ID: id, Status: status}, nil
	case domain.OrderStatusPending:
	default:
		return domain.Order{}, fmt.Errorf("%w: unknown status %q", errMalformed, fields[8])
	}

	qty, err := parseNonNegative(fields[6], "quantity")
	if err != nil {
		return domain.Order{}, err
	}
	total, err := parseNonNegative(fields[7], "totalCost")
	if err != nil {
		return domain.Order{}, err
	}

	return domain.Order{
		ID:              id,
		CustomerName:    fields[1],
		CustomerAddress: fields[2],
		CustomerPhone:   fields[3],
		DishID:          strings.TrimSpace(fields[4]),
		DishName:        fields[5],
		Quantity:        int(qty),
		TotalCost:       total,
		Status:          status,
	}, nil
}

func parseNonNegative(raw, field string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", errMalformed, field, raw)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: %s must be non-negative", errMalformed, field)
	}
	return value, nil
}
