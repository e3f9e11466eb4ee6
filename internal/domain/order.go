package domain

import (
	"math"
	"strings"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ принят и ожидает приготовления.
	OrderStatusPending OrderStatus = "Pending"
	// OrderStatusCanceled — заказ отменён клиентом. Переход необратим.
	OrderStatusCanceled OrderStatus = "Canceled"
)

// CanceledPlaceholder записывается в поля отменённого заказа вместо данных.
const CanceledPlaceholder = "*"

// OrderIDPrefix — префикс генерируемых идентификаторов заказов (O1, O2, ...).
const OrderIDPrefix = "O"

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCanceled:
		return true
	default:
		return false
	}
}

// Customer — контактные данные клиента, которые попадают в заказ.
type Customer struct {
	Name    string
	Address string
	Phone   string
}

// Order — одна строка файла заказов.
type Order struct {
	ID              string
	CustomerName    string
	CustomerAddress string
	CustomerPhone   string
	DishID          string
	// DishName копируется из каталога в момент заказа и дальше не меняется.
	DishName  string
	Quantity  int
	TotalCost int64
	Status    OrderStatus
}

// NewOrder собирает заказ в статусе Pending по блюду из каталога.
// Переполнение стоимости проверяется заранее через OrderTotal.
func NewOrder(id string, customer Customer, dish Dish, quantity int) Order {
	return Order{
		ID:              id,
		CustomerName:    customer.Name,
		CustomerAddress: customer.Address,
		CustomerPhone:   customer.Phone,
		DishID:          dish.ID,
		DishName:        dish.Name,
		Quantity:        quantity,
		TotalCost:       dish.Price * int64(quantity),
		Status:          OrderStatusPending,
	}
}

// OrderTotal считает стоимость quantity порций по цене price.
// Произведение, не помещающееся в int64, возвращает ErrAmountOverflow.
func OrderTotal(price int64, quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, ErrQuantityInvalid
	}
	if price < 0 {
		return 0, ErrPriceNegative
	}
	if price > math.MaxInt64/int64(quantity) {
		return 0, ErrAmountOverflow
	}
	return price * int64(quantity), nil
}

// AddAmount складывает неотрицательные суммы без переполнения.
func AddAmount(total, amount int64) (int64, error) {
	if amount > math.MaxInt64-total {
		return 0, ErrAmountOverflow
	}
	return total + amount, nil
}

// IsCanceled сообщает, отменён ли заказ.
func (o Order) IsCanceled() bool {
	return o.Status == OrderStatusCanceled
}

// Canceled возвращает отменённую копию заказа: все поля, кроме ID, затираются.
func (o Order) Canceled() Order {
	return Order{
		ID:     o.ID,
		Status: OrderStatusCanceled,
	}
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if strings.TrimSpace(o.ID) == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrOrderStatusInvalid)
	}
	// У отменённого заказа данные затёрты, остальные проверки к нему не относятся.
	if o.IsCanceled() {
		return errs
	}

	if strings.TrimSpace(o.CustomerName) == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if strings.TrimSpace(o.DishID) == "" {
		errs = append(errs, ErrDishIDRequired)
	}
	if o.Quantity <= 0 {
		errs = append(errs, ErrQuantityInvalid)
	}
	if o.TotalCost < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	return errs
}
