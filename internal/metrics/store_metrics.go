package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/eats/internal/domain"
)

// Значения метки result для операций хранилища.
const (
	ResultOK          = "ok"
	ResultNotFound    = "not_found"
	ResultDuplicate   = "duplicate"
	ResultRejected    = "rejected"
	ResultUnavailable = "unavailable"
	ResultError       = "error"
)

// StoreMetrics содержит метрики операций табличного хранилища.
// Nil-значение допустимо и ничего не записывает.
type StoreMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	malformed  *prometheus.CounterVec
}

// NewStoreMetrics создаёт метрики хранилища в DefaultRegisterer.
func NewStoreMetrics() *StoreMetrics {
	return NewStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewStoreMetricsWithRegisterer создаёт метрики хранилища в указанном реестре.
func NewStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	registerer = orDefault(registerer)

	return &StoreMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "eats_store_operations_total",
			Help: "Total number of record store operations grouped by table, operation and result",
		}, []string{"table", "op", "result"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "eats_store_operation_duration_seconds",
			Help:    "Duration of record store operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"table", "op"}),
		malformed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "eats_store_malformed_lines_total",
			Help: "Total number of skipped malformed lines",
		}, []string{"table"}),
	}
}

// ObserveOperation фиксирует результат и длительность операции.
func (m *StoreMetrics) ObserveOperation(table, op string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(table, op, ResultOf(err)).Inc()
	m.duration.WithLabelValues(table, op).Observe(time.Since(started).Seconds())
}

// RecordMalformed увеличивает счётчик пропущенных строк.
func (m *StoreMetrics) RecordMalformed(table string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.malformed.WithLabelValues(table).Add(float64(count))
}

// ResultOf переводит ошибку операции в значение метки result.
func ResultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, domain.ErrStorageUnavailable):
		return ResultUnavailable
	case errors.Is(err, domain.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, domain.ErrDuplicateKey):
		return ResultDuplicate
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrAlreadyCanceled),
		errors.Is(err, domain.ErrDishNotFound):
		return ResultRejected
	default:
		return ResultError
	}
}
