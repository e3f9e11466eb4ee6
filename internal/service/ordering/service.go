// Package ordering принимает и отменяет заказы и строит отчёт о продажах.
package ordering

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/eats/internal/domain"
	"github.com/vladislavdragonenkov/eats/internal/metrics"
)

const (
	rejectReasonInvalidInput    = "invalid_input"
	rejectReasonDishNotFound    = "dish_not_found"
	rejectReasonNotFound        = "not_found"
	rejectReasonAlreadyCanceled = "already_canceled"
)

// DishFinder ищет блюдо в каталоге по идентификатору.
type DishFinder interface {
	FindDish(id string) (domain.Dish, error)
}

// ReportEntry — строка отчёта о продажах.
type ReportEntry struct {
	OrderID  string
	DishName string
	Quantity int
	Total    int64
	Status   domain.OrderStatus
}

// SalesReport — отчёт о продажах по всем строкам файла заказов.
type SalesReport struct {
	Entries []ReportEntry
	// TotalSales — сумма TotalCost по всем заказам. У отменённых заказов сумма
	// затёрта при отмене и в итог не попадает.
	TotalSales int64
	Orders     int
	Canceled   int
}

// Option настраивает Service.
type Option func(*Service)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics задаёт бизнес-метрики.
func WithMetrics(m *metrics.BusinessMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service реализует операции с заказами.
type Service struct {
	orders  domain.OrderStore
	dishes  DishFinder
	logger  *log.Entry
	metrics *metrics.BusinessMetrics
}

// NewService конструирует сервис заказов.
func NewService(orders domain.OrderStore, dishes DishFinder, options ...Option) *Service {
	s := &Service{orders: orders, dishes: dishes}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "ordering")
	}
	return s
}

// PlaceOrder оформляет заказ на quantity порций блюда dishID.
// Имя и цена блюда фиксируются в заказе на момент оформления.
func (s *Service) PlaceOrder(customer domain.Customer, dishID string, quantity int) (domain.Order, error) {
	customer = domain.Customer{
		Name:    domain.NormalizeText(customer.Name),
		Address: domain.NormalizeText(customer.Address),
		Phone:   domain.NormalizeText(customer.Phone),
	}
	dishID = domain.NormalizeText(dishID)

	if customer.Name == "" {
		s.metrics.RecordOrderRejected(rejectReasonInvalidInput)
		return domain.Order{}, domain.ErrCustomerRequired
	}
	if quantity <= 0 {
		s.metrics.RecordOrderRejected(rejectReasonInvalidInput)
		return domain.Order{}, domain.ErrQuantityInvalid
	}

	dish, err := s.dishes.FindDish(dishID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.RecordOrderRejected(rejectReasonDishNotFound)
			return domain.Order{}, fmt.Errorf("dish %q: %w", dishID, domain.ErrDishNotFound)
		}
		return domain.Order{}, err
	}
	if _, err := domain.OrderTotal(dish.Price, quantity); err != nil {
		s.metrics.RecordOrderRejected(rejectReasonInvalidInput)
		return domain.Order{}, fmt.Errorf("dish %q x %d: %w", dish.ID, quantity, err)
	}

	order, err := s.orders.AppendWithGeneratedID(domain.OrderIDPrefix, func(id string) (domain.Order, error) {
		order := domain.NewOrder(id, customer, dish, quantity)
		return order, domain.JoinInvariantErrors(order.ValidateInvariants())
	})
	if err != nil {
		s.logger.WithError(err).WithField("dish_id", dishID).Error("failed to place order")
		return domain.Order{}, err
	}

	s.metrics.RecordOrderPlaced()
	s.logger.WithFields(log.Fields{
		"order_id":   order.ID,
		"dish_id":    order.DishID,
		"quantity":   order.Quantity,
		"total_cost": order.TotalCost,
	}).Info("order placed")
	return order, nil
}

// CancelOrder отменяет заказ. Повторная отмена возвращает ErrAlreadyCanceled
// и строку не трогает.
func (s *Service) CancelOrder(orderID string) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)

	canceled, err := s.orders.UpdateByKey(orderID, func(o domain.Order) (domain.Order, error) {
		if o.IsCanceled() {
			return o, fmt.Errorf("order %q: %w", o.ID, domain.ErrAlreadyCanceled)
		}
		return o.Canceled(), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyCanceled):
			s.metrics.RecordOrderRejected(rejectReasonAlreadyCanceled)
		case errors.Is(err, domain.ErrNotFound):
			s.metrics.RecordOrderRejected(rejectReasonNotFound)
		default:
			s.logger.WithError(err).WithField("order_id", orderID).Error("failed to cancel order")
		}
		return domain.Order{}, err
	}

	s.metrics.RecordOrderCanceled()
	s.logger.WithField("order_id", orderID).Info("order canceled")
	return canceled, nil
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(orderID string) (domain.Order, error) {
	return s.orders.FindByKey(strings.TrimSpace(orderID))
}

// ListOrders возвращает все заказы в порядке оформления.
func (s *Service) ListOrders() ([]domain.Order, error) {
	return s.orders.List()
}

// SalesReport строит отчёт за один проход по заказам.
func (s *Service) SalesReport() (SalesReport, error) {
	var sumErr error
	report, err := domain.Aggregate(s.orders, SalesReport{Entries: []ReportEntry{}}, func(r SalesReport, o domain.Order) SalesReport {
		r.Entries = append(r.Entries, ReportEntry{
			OrderID:  o.ID,
			DishName: o.DishName,
			Quantity: o.Quantity,
			Total:    o.TotalCost,
			Status:   o.Status,
		})
		if sumErr == nil {
			total, err := domain.AddAmount(r.TotalSales, o.TotalCost)
			if err != nil {
				sumErr = fmt.Errorf("sales total at order %q: %w", o.ID, err)
			}
			r.TotalSales = total
		}
		r.Orders++
		if o.IsCanceled() {
			r.Canceled++
		}
		return r
	})
	if err != nil {
		return SalesReport{}, err
	}
	if sumErr != nil {
		s.logger.WithError(sumErr).Error("sales report overflow")
		return SalesReport{}, sumErr
	}

	s.metrics.RecordSalesTotal(report.TotalSales)
	return report, nil
}
