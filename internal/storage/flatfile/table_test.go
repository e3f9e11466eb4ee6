package flatfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/eats/internal/domain"
	"github.com/vladislavdragonenkov/eats/internal/metrics"
	"github.com/vladislavdragonenkov/eats/internal/storage/flatfile"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

func openDishes(t *testing.T, dir string) *flatfile.Table[domain.Dish] {
	t.Helper()
	table, err := flatfile.Open(
		filepath.Join(dir, "dishes.txt"),
		flatfile.DishSchema(),
		flatfile.WithLogger(loggerForTests()),
		flatfile.WithMetrics(metrics.NewStoreMetricsWithRegisterer(prometheus.NewRegistry())),
	)
	require.NoError(t, err)
	return table
}

func openOrders(t *testing.T, dir string) *flatfile.Table[domain.Order] {
	t.Helper()
	path := filepath.Join(dir, "orders.txt")
	table, err := flatfile.Open(
		path,
		flatfile.OrderSchema(),
		flatfile.WithLogger(loggerForTests()),
		flatfile.WithSequenceFile(path+".seq"),
	)
	require.NoError(t, err)
	return table
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func seedDishes(t *testing.T, table *flatfile.Table[domain.Dish]) []domain.Dish {
	t.Helper()
	dishes := []domain.Dish{
		{ID: "1", Name: "Burger", Description: "Beef, cheese, \"special\" sauce", Price: 150, PrepTimeMinutes: 10},
		{ID: "2", Name: "Pizza", Description: "Thin crust", Price: 500, PrepTimeMinutes: 20},
		{ID: "3", Name: "Fuchka", Description: "", Price: 60, PrepTimeMinutes: 5},
	}
	for _, d := range dishes {
		require.NoError(t, table.Insert(d))
	}
	return dishes
}

func TestOpen_CreatesMissingFileAndDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "nested")
	table := openDishes(t, dir)

	_, err := os.Stat(table.Path())
	require.NoError(t, err)
	require.NoError(t, table.Ping())

	dishes, err := table.List()
	require.NoError(t, err)
	require.Empty(t, dishes)
}

func TestOpen_StorageUnavailable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := flatfile.Open(filepath.Join(blocker, "dishes.txt"), flatfile.DishSchema())
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestInsertFindByKey_RoundTripsExactFields(t *testing.T) {
	table := openDishes(t, t.TempDir())
	dishes := seedDishes(t, table)

	for _, want := range dishes {
		got, err := table.FindByKey(want.ID)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	content := readFile(t, table.Path())
	require.Equal(t, 3, strings.Count(content, "\n"), "one record per line")
	require.Contains(t, content, `1,Burger,"Beef, cheese, ""special"" sauce",150,10`)
}

func TestInsert_DuplicateKey(t *testing.T) {
	table := openDishes(t, t.TempDir())
	seedDishes(t, table)

	err := table.Insert(domain.Dish{ID: "2", Name: "Another pizza"})
	require.ErrorIs(t, err, domain.ErrDuplicateKey)

	dishes, err := table.List()
	require.NoError(t, err)
	require.Len(t, dishes, 3)
}

func TestInsert_EmptyKey(t *testing.T) {
	table := openDishes(t, t.TempDir())
	err := table.Insert(domain.Dish{Name: "Nameless"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInsert_NewlinesBecomeSpaces(t *testing.T) {
	table := openDishes(t, t.TempDir())
	require.NoError(t, table.Insert(domain.Dish{ID: "9", Name: "Soup", Description: "hot\nand\r\nsour"}))

	got, err := table.FindByKey("9")
	require.NoError(t, err)
	require.Equal(t, "hot and sour", got.Description)
	require.Equal(t, 1, strings.Count(readFile(t, table.Path()), "\n"))
}

func TestFindByKey_NotFound(t *testing.T) {
	table := openDishes(t, t.TempDir())
	seedDishes(t, table)

	_, err := table.FindByKey("42")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateByKey_PreservesOrderAndCount(t *testing.T) {
	table := openDishes(t, t.TempDir())
	before := seedDishes(t, table)

	updated, err := table.UpdateByKey("2", func(d domain.Dish) (domain.Dish, error) {
		d.Price = 550
		d.Name = "Pizza, large"
		return d, nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(550), updated.Price)

	after, err := table.List()
	require.NoError(t, err)
	require.Len(t, after, len(before))
	require.Equal(t, before[0], after[0])
	require.Equal(t, before[2], after[2])
	require.Equal(t, "2", after[1].ID)
	require.Equal(t, "Pizza, large", after[1].Name)
}

func TestUpdateByKey_MutatorErrorAbortsWithoutWrite(t *testing.T) {
	table := openDishes(t, t.TempDir())
	seedDishes(t, table)
	before := readFile(t, table.Path())

	boom := errors.New("boom")
	_, err := table.UpdateByKey("1", func(d domain.Dish) (domain.Dish, error) {
		return d, boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, before, readFile(t, table.Path()))
}

func TestUpdateByKey_KeyChangeRejected(t *testing.T) {
	table := openDishes(t, t.TempDir())
	seedDishes(t, table)

	_, err := table.UpdateByKey("1", func(d domain.Dish) (domain.Dish, error) {
		d.ID = "100"
		return d, nil
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateByKey_NotFound(t *testing.T) {
	table := openDishes(t, t.TempDir())

	_, err := table.UpdateByKey("1", func(d domain.Dish) (domain.Dish, error) { return d, nil })
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteByKey_RemovesOnlyTarget(t *testing.T) {
	table := openDishes(t, t.TempDir())
	before := seedDishes(t, table)

	require.NoError(t, table.DeleteByKey("2"))

	after, err := table.List()
	require.NoError(t, err)
	require.Equal(t, []domain.Dish{before[0], before[2]}, after)

	require.ErrorIs(t, table.DeleteByKey("2"), domain.ErrNotFound)
}

func TestSearch_ReturnsMatchesInFileOrder(t *testing.T) {
	table := openDishes(t, t.TempDir())
	seedDishes(t, table)

	cheap, err := table.Search(func(d domain.Dish) bool { return d.Price < 200 })
	require.NoError(t, err)
	require.Len(t, cheap, 2)
	require.Equal(t, "1", cheap[0].ID)
	require.Equal(t, "3", cheap[1].ID)

	none, err := table.Search(func(domain.Dish) bool { return false })
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestMalformedLines_SkippedAndPreserved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dishes.txt")
	legacy := strings.Join([]string{
		"1,Burger,Juicy beef,150,10",
		"broken line without enough fields",
		"2,Pizza,Cheesy,not-a-price,20",
		"",
		"3,Biryani,Kacchi,350,40",
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	table := openDishes(t, dir)

	dishes, err := table.List()
	require.NoError(t, err)
	require.Len(t, dishes, 2)
	require.Equal(t, "Burger", dishes[0].Name)
	require.Equal(t, "Biryani", dishes[1].Name)

	_, err = table.UpdateByKey("3", func(d domain.Dish) (domain.Dish, error) {
		d.Price = 360
		return d, nil
	})
	require.NoError(t, err)

	content := readFile(t, path)
	require.Contains(t, content, "broken line without enough fields\n")
	require.Contains(t, content, "2,Pizza,Cheesy,not-a-price,20\n")
	require.Contains(t, content, "3,Biryani,Kacchi,360,40\n")
}

func TestWrites_LeaveNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	table := openDishes(t, dir)
	seedDishes(t, table)
	require.NoError(t, table.DeleteByKey("1"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "dishes.txt", entries[0].Name())
}

func TestReadAfterFileRemoved_StorageUnavailable(t *testing.T) {
	table := openDishes(t, t.TempDir())
	require.NoError(t, os.Remove(table.Path()))

	_, err := table.List()
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
	require.True(t, domain.IsStorageUnavailable(err))
	require.Error(t, table.Ping())
}

func pendingOrder(id string) domain.Order {
	dish := domain.Dish{ID: "1", Name: "Burger", Price: 150}
	return domain.NewOrder(id, domain.Customer{Name: "Karim", Address: "House 7, Road 2", Phone: "017"}, dish, 3)
}

func TestAppendWithGeneratedID_Sequence(t *testing.T) {
	table := openOrders(t, t.TempDir())

	for _, want := range []string{"O1", "O2", "O3"} {
		order, err := table.AppendWithGeneratedID(domain.OrderIDPrefix, func(id string) (domain.Order, error) {
			return pendingOrder(id), nil
		})
		require.NoError(t, err)
		require.Equal(t, want, order.ID)
	}
}

func TestAppendWithGeneratedID_MonotonicAfterDelete(t *testing.T) {
	table := openOrders(t, t.TempDir())
	build := func(id string) (domain.Order, error) { return pendingOrder(id), nil }

	_, err := table.AppendWithGeneratedID("O", build)
	require.NoError(t, err)
	_, err = table.AppendWithGeneratedID("O", build)
	require.NoError(t, err)
	require.NoError(t, table.DeleteByKey("O2"))

	next, err := table.AppendWithGeneratedID("O", build)
	require.NoError(t, err)
	require.Equal(t, "O3", next.ID)
}

func TestAppendWithGeneratedID_LegacyFileUsesLineCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.txt")
	legacy := "O1,Rahim,Dhaka,017,1,Burger,3,450,Pending\n" +
		"O2,*,*,*,*,*,*,*,Canceled\n"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	table := openOrders(t, dir)
	order, err := table.AppendWithGeneratedID("O", func(id string) (domain.Order, error) {
		return pendingOrder(id), nil
	})
	require.NoError(t, err)
	require.Equal(t, "O3", order.ID)
	require.Equal(t, "3\n", readFile(t, path+".seq"))
}

func TestAppendWithGeneratedID_BuildErrorAppendsNothing(t *testing.T) {
	table := openOrders(t, t.TempDir())
	boom := errors.New("boom")

	_, err := table.AppendWithGeneratedID("O", func(string) (domain.Order, error) {
		return domain.Order{}, boom
	})
	require.ErrorIs(t, err, boom)

	orders, err := table.List()
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestAppendWithGeneratedID_WrongKeyRejected(t *testing.T) {
	table := openOrders(t, t.TempDir())

	_, err := table.AppendWithGeneratedID("O", func(string) (domain.Order, error) {
		return pendingOrder("X1"), nil
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCanceledOrder_WrittenWithPlaceholders(t *testing.T) {
	table := openOrders(t, t.TempDir())
	_, err := table.AppendWithGeneratedID("O", func(id string) (domain.Order, error) {
		return pendingOrder(id), nil
	})
	require.NoError(t, err)
	require.Contains(t, readFile(t, table.Path()), `O1,Karim,"House 7, Road 2",017,1,Burger,3,450,Pending`)

	canceled, err := table.UpdateByKey("O1", func(o domain.Order) (domain.Order, error) {
		return o.Canceled(), nil
	})
	require.NoError(t, err)
	require.True(t, canceled.IsCanceled())
	require.Equal(t, "O1,*,*,*,*,*,*,*,Canceled\n", readFile(t, table.Path()))

	stored, err := table.FindByKey("O1")
	require.NoError(t, err)
	require.Equal(t, domain.Order{ID: "O1", Status: domain.OrderStatusCanceled}, stored)
}

func TestEachAndAggregate(t *testing.T) {
	table := openOrders(t, t.TempDir())
	for i := 0; i < 2; i++ {
		_, err := table.AppendWithGeneratedID("O", func(id string) (domain.Order, error) {
			return pendingOrder(id), nil
		})
		require.NoError(t, err)
	}

	total, err := domain.Aggregate(domain.OrderStore(table), int64(0), func(sum int64, o domain.Order) int64 {
		return sum + o.TotalCost
	})
	require.NoError(t, err)
	require.Equal(t, int64(900), total)

	stop := errors.New("stop")
	visited := 0
	err = table.Each(func(domain.Order) error {
		visited++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, visited)
}
