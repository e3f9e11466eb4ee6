package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vladislavdragonenkov/eats/internal/domain"
)

func counterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := counter.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func TestNewStoreMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewStoreMetricsWithRegisterer(reg)
	second := NewStoreMetricsWithRegisterer(reg)

	if first.operations != second.operations {
		t.Fatal("expected second constructor call to reuse operations counter")
	}
	if first.duration != second.duration {
		t.Fatal("expected second constructor call to reuse duration histogram")
	}
}

func TestStoreMetrics_ObserveOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetricsWithRegisterer(reg)

	m.ObserveOperation("dishes", "insert", time.Now(), nil)
	m.ObserveOperation("dishes", "insert", time.Now(), domain.ErrDuplicateKey)
	m.ObserveOperation("dishes", "insert", time.Now(), domain.ErrDuplicateKey)

	if got := counterValue(t, m.operations.WithLabelValues("dishes", "insert", ResultOK)); got != 1 {
		t.Errorf("expected 1 ok insert, got %f", got)
	}
	if got := counterValue(t, m.operations.WithLabelValues("dishes", "insert", ResultDuplicate)); got != 2 {
		t.Errorf("expected 2 duplicate inserts, got %f", got)
	}
}

func TestStoreMetrics_RecordMalformed(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetricsWithRegisterer(reg)

	m.RecordMalformed("orders", 3)
	m.RecordMalformed("orders", 0)

	if got := counterValue(t, m.malformed.WithLabelValues("orders")); got != 3 {
		t.Errorf("expected 3 malformed lines, got %f", got)
	}
}

func TestNilMetricsAreNoop(t *testing.T) {
	var store *StoreMetrics
	store.ObserveOperation("dishes", "list", time.Now(), nil)
	store.RecordMalformed("dishes", 1)

	var business *BusinessMetrics
	business.RecordDishChange(DishAdded)
	business.RecordOrderPlaced()
	business.RecordOrderCanceled()
	business.RecordOrderRejected("dish_not_found")
	business.RecordSalesTotal(10)
}

func TestBusinessMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBusinessMetricsWithRegisterer(reg)

	m.RecordOrderPlaced()
	m.RecordOrderPlaced()
	m.RecordOrderCanceled()
	m.RecordDishChange(DishDeleted)
	m.RecordSalesTotal(750)

	if got := counterValue(t, m.ordersPlaced); got != 2 {
		t.Errorf("expected 2 placed orders, got %f", got)
	}
	if got := counterValue(t, m.ordersCanceled); got != 1 {
		t.Errorf("expected 1 canceled order, got %f", got)
	}
	if got := counterValue(t, m.dishChanges.WithLabelValues(DishDeleted)); got != 1 {
		t.Errorf("expected 1 deleted dish, got %f", got)
	}

	gauge := &dto.Metric{}
	if err := m.salesTotal.Write(gauge); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if gauge.Gauge.GetValue() != 750 {
		t.Errorf("expected sales total 750, got %f", gauge.Gauge.GetValue())
	}
}

func TestResultOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ResultOK},
		{fmt.Errorf("read dishes: %w", domain.ErrStorageUnavailable), ResultUnavailable},
		{domain.ErrNotFound, ResultNotFound},
		{domain.ErrDuplicateKey, ResultDuplicate},
		{domain.ErrQuantityInvalid, ResultRejected},
		{domain.ErrAlreadyCanceled, ResultRejected},
		{errors.New("boom"), ResultError},
	}

	for _, tt := range tests {
		if got := ResultOf(tt.err); got != tt.want {
			t.Errorf("ResultOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
