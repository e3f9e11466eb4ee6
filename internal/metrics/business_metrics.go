package metrics

import "github.com/prometheus/client_golang/prometheus"

// Действия над каталогом для метки action.
const (
	DishAdded   = "added"
	DishUpdated = "updated"
	DishDeleted = "deleted"
)

// BusinessMetrics содержит счётчики каталога и заказов.
// Nil-значение допустимо и ничего не записывает.
type BusinessMetrics struct {
	dishChanges    *prometheus.CounterVec
	ordersPlaced   prometheus.Counter
	ordersCanceled prometheus.Counter
	ordersRejected *prometheus.CounterVec
	salesTotal     prometheus.Gauge
}

// NewBusinessMetrics создаёт бизнес-метрики в DefaultRegisterer.
func NewBusinessMetrics() *BusinessMetrics {
	return NewBusinessMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewBusinessMetricsWithRegisterer создаёт бизнес-метрики в указанном реестре.
func NewBusinessMetricsWithRegisterer(registerer prometheus.Registerer) *BusinessMetrics {
	registerer = orDefault(registerer)

	return &BusinessMetrics{
		dishChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "eats_catalog_changes_total",
			Help: "Total number of catalog changes grouped by action",
		}, []string{"action"}),
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "eats_orders_placed_total",
			Help: "Total number of placed orders",
		}),
		ordersCanceled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "eats_orders_canceled_total",
			Help: "Total number of canceled orders",
		}),
		ordersRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "eats_orders_rejected_total",
			Help: "Total number of rejected order operations grouped by reason",
		}, []string{"reason"}),
		salesTotal: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "eats_sales_total",
			Help: "Total sales from the last generated sales report",
		}),
	}
}

// RecordDishChange увеличивает счётчик изменений каталога.
func (m *BusinessMetrics) RecordDishChange(action string) {
	if m == nil {
		return
	}
	m.dishChanges.WithLabelValues(action).Inc()
}

// RecordOrderPlaced увеличивает счётчик принятых заказов.
func (m *BusinessMetrics) RecordOrderPlaced() {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
}

// RecordOrderCanceled увеличивает счётчик отмен.
func (m *BusinessMetrics) RecordOrderCanceled() {
	if m == nil {
		return
	}
	m.ordersCanceled.Inc()
}

// RecordOrderRejected увеличивает счётчик отклонённых операций с заказами.
func (m *BusinessMetrics) RecordOrderRejected(reason string) {
	if m == nil {
		return
	}
	m.ordersRejected.WithLabelValues(reason).Inc()
}

// RecordSalesTotal запоминает итог последнего отчёта о продажах.
func (m *BusinessMetrics) RecordSalesTotal(total int64) {
	if m == nil {
		return
	}
	m.salesTotal.Set(float64(total))
}
