// Package cli реализует интерактивные меню администратора и клиента.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/eats/internal/domain"
	"github.com/vladislavdragonenkov/eats/internal/service/catalog"
	"github.com/vladislavdragonenkov/eats/internal/service/ordering"
)

var (
	// ErrAuthFailed — неверные учётные данные администратора.
	ErrAuthFailed = errors.New("invalid username or password")
	// ErrInvalidRole — на приветствии выбрана неизвестная роль.
	ErrInvalidRole = errors.New("invalid role selection")
)

// Authenticator проверяет учётные данные администратора.
type Authenticator func(username, password string) bool

// Option настраивает Session.
type Option func(*Session)

// WithLogger задаёт logger сессии.
func WithLogger(logger *log.Entry) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session — один интерактивный сеанс работы с меню.
type Session struct {
	scanner *bufio.Scanner
	out     *Printer
	catalog *catalog.Service
	orders  *ordering.Service
	logger  *log.Entry
}

// NewSession создаёт сеанс, читающий ввод из in и пишущий в out.
func NewSession(in io.Reader, out io.Writer, catalogSvc *catalog.Service, ordersSvc *ordering.Service, options ...Option) *Session {
	s := &Session{
		scanner: bufio.NewScanner(in),
		out:     NewPrinter(out),
		catalog: catalogSvc,
		orders:  ordersSvc,
	}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "cli")
	}
	s.logger = s.logger.WithField("session_id", uuid.NewString())
	return s
}

// RunWelcome спрашивает роль и запускает соответствующее меню.
func (s *Session) RunWelcome(auth Authenticator) error {
	s.out.Section("Welcome to Delicious Eats!")
	role, err := s.ask("Are you an Admin or Customer? (Enter 'admin' or 'customer'):")
	if err != nil {
		return ignoreEOF(err)
	}

	switch strings.ToLower(role) {
	case "admin":
		return s.RunAdmin(auth)
	case "customer":
		return s.RunCustomer()
	default:
		s.out.Error("Invalid selection! Exiting...")
		return ErrInvalidRole
	}
}

// RunAdmin проверяет учётные данные и показывает меню администратора
// до выбора пункта Exit или конца ввода.
func (s *Session) RunAdmin(auth Authenticator) error {
	username, err := s.ask("Enter username:")
	if err != nil {
		return ignoreEOF(err)
	}
	password, err := s.ask("Enter password:")
	if err != nil {
		return ignoreEOF(err)
	}
	if auth == nil || !auth(username, password) {
		s.logger.WithField("username", username).Warn("admin authentication failed")
		s.out.Error("Invalid username or password!")
		return ErrAuthFailed
	}
	s.out.Success("Authentication successful!")
	s.logger = s.logger.WithField("role", "admin")

	return s.loop("Admin Menu", []menuItem{
		{"View All Dishes", s.viewDishes},
		{"Add New Dish", s.addDish},
		{"Update Dish", s.updateDish},
		{"Delete Dish", s.deleteDish},
		{"Search for Dishes", s.searchDishes},
		{"Sales Report", s.salesReport},
	})
}

// RunCustomer показывает меню клиента до выбора Exit или конца ввода.
func (s *Session) RunCustomer() error {
	s.logger = s.logger.WithField("role", "customer")

	return s.loop("Customer Menu", []menuItem{
		{"View All Dishes", s.viewDishes},
		{"Place Order", s.placeOrder},
		{"Cancel Order", s.cancelOrder},
		{"View All Orders", s.viewOrders},
		{"Search for Dishes", s.searchDishes},
	})
}

type menuItem struct {
	title  string
	action func() error
}

// loop крутит меню. Последний пункт всегда Exit. Ошибки действий
// показываются пользователю, после чего меню выводится снова.
func (s *Session) loop(title string, items []menuItem) error {
	titles := make([]string, 0, len(items)+1)
	for _, item := range items {
		titles = append(titles, item.title)
	}
	titles = append(titles, "Exit")

	for {
		s.out.Menu(title, titles)
		raw, err := s.ask("Enter your choice:")
		if err != nil {
			return ignoreEOF(err)
		}

		choice, convErr := strconv.Atoi(raw)
		switch {
		case convErr != nil || choice < 1 || choice > len(titles):
			s.out.Error("Invalid choice!")
			continue
		case choice == len(titles):
			s.logger.Debug("session finished")
			return nil
		}

		item := items[choice-1]
		s.logger.WithField("action", item.title).Debug("menu action")
		if err := item.action(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.report(err)
		}
	}
}

// ask печатает приглашение и читает одну строку без крайних пробелов.
// Конец ввода возвращается как io.EOF.
func (s *Session) ask(label string) (string, error) {
	s.out.Prompt(label)
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.scanner.Text()), nil
}

// askAll задаёт вопросы по очереди и останавливается на первой ошибке.
func (s *Session) askAll(labels ...string) ([]string, error) {
	answers := make([]string, 0, len(labels))
	for _, label := range labels {
		answer, err := s.ask(label)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

func (s *Session) viewDishes() error {
	dishes, err := s.catalog.ListDishes()
	if err != nil {
		return err
	}
	s.out.Section("All available dishes")
	s.out.Dishes(dishes)
	return nil
}

func (s *Session) searchDishes() error {
	term, err := s.ask("Enter dish name to search for (part of name):")
	if err != nil {
		return err
	}
	dishes, err := s.catalog.SearchByName(term)
	if err != nil {
		return err
	}
	s.out.Dishes(dishes)
	return nil
}

func (s *Session) addDish() error {
	answers, err := s.askAll(
		"Enter Dish ID (e.g., 1, 2, 3):",
		"Enter Dish Name:",
		"Enter Dish Description:",
		"Enter Dish Price (in tk):",
		"Enter Dish Preparation Time (in minutes):",
	)
	if err != nil {
		return err
	}

	dish, err := s.catalog.AddDish(catalog.DishInput{
		ID:              answers[0],
		Name:            answers[1],
		Description:     answers[2],
		Price:           answers[3],
		PrepTimeMinutes: answers[4],
	})
	if err != nil {
		return err
	}
	s.out.Success("Dish '%s' added successfully!", dish.Name)
	return nil
}

func (s *Session) updateDish() error {
	id, err := s.ask("Enter the Dish ID to update (e.g., 1, 2, 3):")
	if err != nil {
		return err
	}
	if _, err := s.catalog.FindDish(id); err != nil {
		return err
	}

	answers, err := s.askAll(
		"Enter new Dish Name (or press Enter to keep the current):",
		"Enter new Dish Description (or press Enter to keep the current):",
		"Enter new Dish Price (or press Enter to keep the current):",
		"Enter new Dish Preparation Time (or press Enter to keep the current):",
	)
	if err != nil {
		return err
	}

	if _, err := s.catalog.UpdateDish(id, catalog.DishPatch{
		Name:            answers[0],
		Description:     answers[1],
		Price:           answers[2],
		PrepTimeMinutes: answers[3],
	}); err != nil {
		return err
	}
	s.out.Success("Dish '%s' updated successfully!", id)
	return nil
}

func (s *Session) deleteDish() error {
	id, err := s.ask("Enter the Dish ID to delete (e.g., 1, 2, 3):")
	if err != nil {
		return err
	}
	if err := s.catalog.DeleteDish(id); err != nil {
		return err
	}
	s.out.Success("Dish with ID %s deleted successfully!", id)
	return nil
}

func (s *Session) salesReport() error {
	report, err := s.orders.SalesReport()
	if err != nil {
		return err
	}
	s.out.Report(report)
	return nil
}

func (s *Session) placeOrder() error {
	answers, err := s.askAll(
		"Enter your name:",
		"Enter your address:",
		"Enter your contact number:",
	)
	if err != nil {
		return err
	}
	customer := domain.Customer{Name: answers[0], Address: answers[1], Phone: answers[2]}

	if err := s.viewDishes(); err != nil {
		return err
	}

	answers, err = s.askAll("Enter Dish ID to order (e.g., 1, 2, 3):", "Enter quantity:")
	if err != nil {
		return err
	}
	quantity, err := ParseQuantity(answers[1])
	if err != nil {
		return err
	}

	order, err := s.orders.PlaceOrder(customer, answers[0], quantity)
	if err != nil {
		return err
	}
	s.out.Success("Order placed successfully! Your Order ID is: %s", order.ID)
	s.out.Info("Total: %s", formatTaka(order.TotalCost))
	return nil
}

func (s *Session) cancelOrder() error {
	id, err := s.ask("Enter the Order ID to cancel (e.g., O1, O2, O3):")
	if err != nil {
		return err
	}
	if _, err := s.orders.CancelOrder(id); err != nil {
		return err
	}
	s.out.Success("Order %s canceled successfully!", id)
	return nil
}

func (s *Session) viewOrders() error {
	orders, err := s.orders.ListOrders()
	if err != nil {
		return err
	}
	s.out.Section("All Orders")
	s.out.Orders(orders)
	return nil
}

// report показывает ошибку действия пользователю.
func (s *Session) report(err error) {
	if domain.IsStorageUnavailable(err) {
		s.logger.WithError(err).Error("storage unavailable")
	}
	s.out.Error("%s", Describe(err))
}

// ParseQuantity разбирает количество порций.
func ParseQuantity(raw string) (int, error) {
	quantity, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("quantity %q: %w", raw, domain.ErrQuantityInvalid)
	}
	return quantity, nil
}

// Describe переводит ошибку сервиса в сообщение для пользователя.
func Describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrDishNotFound):
		return "Error: Dish not found!"
	case errors.Is(err, domain.ErrAlreadyCanceled):
		return "Error: Order is already canceled!"
	case errors.Is(err, domain.ErrInvalidInput):
		return "Invalid input: " + err.Error()
	case domain.IsStorageUnavailable(err):
		return "Storage unavailable: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
