// Package catalog управляет каталогом блюд поверх таблицы domain.DishStore.
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/eats/internal/domain"
	"github.com/vladislavdragonenkov/eats/internal/metrics"
)

// DishInput — поля нового блюда в том виде, в котором их ввёл администратор.
type DishInput struct {
	ID              string
	Name            string
	Description     string
	Price           string
	PrepTimeMinutes string
}

// DishPatch — изменения блюда. Пустое поле оставляет текущее значение.
type DishPatch struct {
	Name            string
	Description     string
	Price           string
	PrepTimeMinutes string
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

// Service реализует операции каталога.
type Service struct {
	store   domain.DishStore
	logger  *log.Entry
	metrics *metrics.BusinessMetrics
}

// NewService конструирует сервис каталога.
func NewService(store domain.DishStore, options ...Option) *Service {
	s := &Service{store: store}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "catalog")
	}
	return s
}

// ListDishes возвращает блюда в порядке добавления.
func (s *Service) ListDishes() ([]domain.Dish, error) {
	return s.store.List()
}

// SearchByName ищет блюда по подстроке названия без учёта регистра.
// Пустая подстрока возвращает весь каталог.
func (s *Service) SearchByName(substring string) ([]domain.Dish, error) {
	needle := strings.ToLower(strings.TrimSpace(substring))
	return s.store.Search(func(d domain.Dish) bool {
		return strings.Contains(strings.ToLower(d.Name), needle)
	})
}

// FindDish возвращает блюдо по идентификатору.
func (s *Service) FindDish(id string) (domain.Dish, error) {
	return s.store.FindByKey(strings.TrimSpace(id))
}

// AddDish проверяет ввод и добавляет блюдо в каталог.
func (s *Service) AddDish(input DishInput) (domain.Dish, error) {
	price, err := parseNonNegative(input.Price, "price")
	if err != nil {
		return domain.Dish{}, err
	}
	prep, err := parseNonNegative(input.PrepTimeMinutes, "preparation time")
	if err != nil {
		return domain.Dish{}, err
	}

	dish := domain.Dish{
		ID:              domain.NormalizeText(input.ID),
		Name:            domain.NormalizeText(input.Name),
		Description:     domain.NormalizeText(input.Description),
		Price:           price,
		PrepTimeMinutes: int(prep),
	}
	if errs := dish.ValidateInvariants(); len(errs) > 0 {
		return domain.Dish{}, domain.JoinInvariantErrors(errs)
	}

	if err := s.store.Insert(dish); err != nil {
		s.logger.WithError(err).WithField("dish_id", dish.ID).Warn("failed to add dish")
		return domain.Dish{}, err
	}

	s.metrics.RecordDishChange(metrics.DishAdded)
	s.logger.WithFields(log.Fields{"dish_id": dish.ID, "name": dish.Name}).Info("dish added")
	return dish, nil
}

// UpdateDish применяет patch к блюду id.
func (s *Service) UpdateDish(id string, patch DishPatch) (domain.Dish, error) {
	id = strings.TrimSpace(id)

	// Числа разбираем до обращения к хранилищу, чтобы ошибка ввода не зависела от наличия блюда.
	var price, prep *int64
	if v := strings.TrimSpace(patch.Price); v != "" {
		parsed, err := parseNonNegative(v, "price")
		if err != nil {
			return domain.Dish{}, err
		}
		price = &parsed
	}
	if v := strings.TrimSpace(patch.PrepTimeMinutes); v != "" {
		parsed, err := parseNonNegative(v, "preparation time")
		if err != nil {
			return domain.Dish{}, err
		}
		prep = &parsed
	}

	updated, err := s.store.UpdateByKey(id, func(d domain.Dish) (domain.Dish, error) {
		if v := domain.NormalizeText(patch.Name); v != "" {
			d.Name = v
		}
		if v := domain.NormalizeText(patch.Description); v != "" {
			d.Description = v
		}
		if price != nil {
			d.Price = *price
		}
		if prep != nil {
			d.PrepTimeMinutes = int(*prep)
		}
		return d, domain.JoinInvariantErrors(d.ValidateInvariants())
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WithError(err).WithField("dish_id", id).Warn("failed to update dish")
		}
		return domain.Dish{}, err
	}

	s.metrics.RecordDishChange(metrics.DishUpdated)
	s.logger.WithField("dish_id", id).Info("dish updated")
	return updated, nil
}

// DeleteDish удаляет блюдо из каталога. Существующие заказы не меняются.
func (s *Service) DeleteDish(id string) error {
	id = strings.TrimSpace(id)
	if err := s.store.DeleteByKey(id); err != nil {
		return err
	}

	s.metrics.RecordDishChange(metrics.DishDeleted)
	s.logger.WithField("dish_id", id).Info("dish deleted")
	return nil
}

func parseNonNegative(raw, field string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number, got %q", domain.ErrInvalidInput, field, raw)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: %s must be non-negative", domain.ErrInvalidInput, field)
	}
	return value, nil
}
