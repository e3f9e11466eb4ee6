package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/eats/internal/domain"
	"github.com/vladislavdragonenkov/eats/internal/health"
	"github.com/vladislavdragonenkov/eats/internal/metrics"
	"github.com/vladislavdragonenkov/eats/internal/storage/flatfile"
	"github.com/vladislavdragonenkov/eats/internal/storage/memory"
)

// Dependencies содержит хранилища и метрики приложения.
type Dependencies struct {
	Dishes  domain.DishStore
	Orders  domain.OrderStore
	Pingers map[string]health.Pinger

	StoreMetrics    *metrics.StoreMetrics
	BusinessMetrics *metrics.BusinessMetrics
	Logger          *log.Entry
}

// NewDependencies открывает хранилища выбранного драйвера. Для файлового
// драйвера недоступный файл данных возвращает ошибку ErrStorageUnavailable.
func NewDependencies(cfg Config, logger *log.Entry, registerer prometheus.Registerer) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{
		Pingers:         make(map[string]health.Pinger),
		StoreMetrics:    metrics.NewStoreMetricsWithRegisterer(registerer),
		BusinessMetrics: metrics.NewBusinessMetricsWithRegisterer(registerer),
		Logger:          logger,
	}

	switch cfg.StorageDriver {
	case StorageDriverMemory:
		logger.Warn("using in-memory storage, data will be lost on exit")
		deps.Dishes = memory.NewDishStore()
		deps.Orders = memory.NewOrderStore()
	case StorageDriverFile:
		if err := deps.openFiles(cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	return deps, nil
}

func (d *Dependencies) openFiles(cfg Config) error {
	storeLogger := d.Logger.WithField("layer", "storage")

	dishes, err := flatfile.Open(cfg.DishesPath(), flatfile.DishSchema(),
		flatfile.WithLogger(storeLogger),
		flatfile.WithMetrics(d.StoreMetrics),
	)
	if err != nil {
		return err
	}

	orderOptions := []flatfile.Option{
		flatfile.WithLogger(storeLogger),
		flatfile.WithMetrics(d.StoreMetrics),
	}
	if cfg.PersistSequence {
		orderOptions = append(orderOptions, flatfile.WithSequenceFile(cfg.OrdersPath()+".seq"))
	}
	orders, err := flatfile.Open(cfg.OrdersPath(), flatfile.OrderSchema(), orderOptions...)
	if err != nil {
		return err
	}

	d.Dishes = dishes
	d.Orders = orders
	d.Pingers["dishes"] = dishes
	d.Pingers["orders"] = orders

	d.Logger.WithFields(log.Fields{
		"dishes": dishes.Path(),
		"orders": orders.Path(),
	}).Debug("data files opened")
	return nil
}
