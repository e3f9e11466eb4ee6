package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/eats/internal/domain"
	"github.com/vladislavdragonenkov/eats/internal/service/catalog"
	"github.com/vladislavdragonenkov/eats/internal/service/ordering"
	"github.com/vladislavdragonenkov/eats/internal/storage/memory"
)

type services struct {
	catalog *catalog.Service
	orders  *ordering.Service
}

func newServices(t *testing.T) services {
	t.Helper()
	catalogSvc := catalog.NewService(memory.NewDishStore())
	_, err := catalogSvc.AddDish(catalog.DishInput{ID: "1", Name: "Burger", Description: "Beef", Price: "150", PrepTimeMinutes: "10"})
	require.NoError(t, err)
	_, err = catalogSvc.AddDish(catalog.DishInput{ID: "2", Name: "Pizza", Description: "Cheese", Price: "100", PrepTimeMinutes: "20"})
	require.NoError(t, err)
	return services{catalog: catalogSvc, orders: ordering.NewService(memory.NewOrderStore(), catalogSvc)}
}

func script(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func newTestSession(svc services, input *strings.Reader, out *bytes.Buffer) *Session {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return NewSession(input, out, svc.catalog, svc.orders, WithLogger(logger.WithField("component", "test")))
}

func allowAdmin(username, password string) bool {
	return username == "admin" && password == "secret"
}

func TestCustomer_PlaceCancelAndView(t *testing.T) {
	svc := newServices(t)
	var out bytes.Buffer

	session := newTestSession(svc, script(
		"2", "Rahim", "Road 5", "01700000000", "1", "3",
		"3", "O1",
		"3", "O1",
		"4",
		"6",
	), &out)

	require.NoError(t, session.RunCustomer())

	text := out.String()
	require.Contains(t, text, "Your Order ID is: O1")
	require.Contains(t, text, "Total: 450 tk")
	require.Contains(t, text, "Order O1 canceled successfully!")
	require.Contains(t, text, "Error: Order is already canceled!")
	require.Contains(t, text, "Canceled")

	order, err := svc.orders.GetOrder("O1")
	require.NoError(t, err)
	require.True(t, order.IsCanceled())
}

func TestCustomer_InvalidQuantityAndUnknownDish(t *testing.T) {
	svc := newServices(t)
	var out bytes.Buffer

	session := newTestSession(svc, script(
		"2", "Rahim", "", "", "1", "three",
		"2", "Rahim", "", "", "42", "1",
		"6",
	), &out)

	require.NoError(t, session.RunCustomer())

	text := out.String()
	require.Contains(t, text, "Invalid input:")
	require.Contains(t, text, "Error: Dish not found!")

	orders, err := svc.orders.ListOrders()
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestCustomer_InvalidChoiceAndEOF(t *testing.T) {
	svc := newServices(t)
	var out bytes.Buffer

	session := newTestSession(svc, script("9", "abc"), &out)

	require.NoError(t, session.RunCustomer())
	require.Equal(t, 2, strings.Count(out.String(), "Invalid choice!"))
}

func TestCustomer_Search(t *testing.T) {
	svc := newServices(t)
	var out bytes.Buffer

	session := newTestSession(svc, script("5", "piz", "6"), &out)

	require.NoError(t, session.RunCustomer())
	require.Contains(t, out.String(), "Pizza")
	require.NotContains(t, out.String(), "Burger")
}

func TestAdmin_AuthenticationFailure(t *testing.T) {
	svc := newServices(t)
	var out bytes.Buffer

	session := newTestSession(svc, script("admin", "wrong", "1"), &out)

	err := session.RunAdmin(allowAdmin)
	require.ErrorIs(t, err, ErrAuthFailed)
	require.Contains(t, out.String(), "Invalid username or password!")
	require.NotContains(t, out.String(), "Admin Menu")
}

func TestAdmin_ManageCatalogAndReport(t *testing.T) {
	svc := newServices(t)
	_, err := svc.orders.PlaceOrder(domain.Customer{Name: "Rahim"}, "2", 3)
	require.NoError(t, err)
	var out bytes.Buffer

	session := newTestSession(svc, script(
		"admin", "secret",
		"2", "3", "Kacchi", "Rice, mutton", "350", "40",
		"3", "3", "", "", "400", "",
		"3", "99",
		"4", "1",
		"1",
		"6",
		"7",
	), &out)

	require.NoError(t, session.RunAdmin(allowAdmin))

	text := out.String()
	require.Contains(t, text, "Authentication successful!")
	require.Contains(t, text, "Dish 'Kacchi' added successfully!")
	require.Contains(t, text, "Dish '3' updated successfully!")
	require.Contains(t, text, "Dish with ID 1 deleted successfully!")
	require.Contains(t, text, "Total Sales: 300 tk")

	dish, err := svc.catalog.FindDish("3")
	require.NoError(t, err)
	require.Equal(t, domain.Dish{ID: "3", Name: "Kacchi", Description: "Rice, mutton", Price: 400, PrepTimeMinutes: 40}, dish)

	_, err = svc.catalog.FindDish("1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdmin_AddDishValidationError(t *testing.T) {
	svc := newServices(t)
	var out bytes.Buffer

	session := newTestSession(svc, script(
		"admin", "secret",
		"2", "4", "Soup", "", "-5", "10",
		"7",
	), &out)

	require.NoError(t, session.RunAdmin(allowAdmin))
	require.Contains(t, out.String(), "Invalid input:")

	_, err := svc.catalog.FindDish("4")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWelcome(t *testing.T) {
	t.Run("customer", func(t *testing.T) {
		var out bytes.Buffer
		session := newTestSession(newServices(t), script("Customer", "6"), &out)
		require.NoError(t, session.RunWelcome(allowAdmin))
		require.Contains(t, out.String(), "Customer Menu")
	})

	t.Run("admin", func(t *testing.T) {
		var out bytes.Buffer
		session := newTestSession(newServices(t), script("admin", "admin", "secret", "7"), &out)
		require.NoError(t, session.RunWelcome(allowAdmin))
		require.Contains(t, out.String(), "Admin Menu")
	})

	t.Run("unknown role", func(t *testing.T) {
		var out bytes.Buffer
		session := newTestSession(newServices(t), script("chef"), &out)
		require.ErrorIs(t, session.RunWelcome(allowAdmin), ErrInvalidRole)
		require.Contains(t, out.String(), "Invalid selection! Exiting...")
	})

	t.Run("empty input", func(t *testing.T) {
		var out bytes.Buffer
		session := newTestSession(newServices(t), strings.NewReader(""), &out)
		require.NoError(t, session.RunWelcome(allowAdmin))
	})
}

func TestParseQuantity(t *testing.T) {
	quantity, err := ParseQuantity(" 4 ")
	require.NoError(t, err)
	require.Equal(t, 4, quantity)

	_, err = ParseQuantity("4.5")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("dish %q: %w", "9", domain.ErrDishNotFound), "Error: Dish not found!"},
		{domain.ErrAlreadyCanceled, "Error: Order is already canceled!"},
		{domain.ErrQuantityInvalid, "Invalid input: "},
		{fmt.Errorf("%w: open orders.txt: denied", domain.ErrStorageUnavailable), "Storage unavailable: "},
		{errors.New("boom"), "Error: boom"},
	}

	for _, tt := range tests {
		require.True(t, strings.HasPrefix(Describe(tt.err), tt.want), Describe(tt.err))
	}
}
