package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vladislavdragonenkov/eats/internal/domain"
	"github.com/vladislavdragonenkov/eats/internal/service/ordering"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")
)

// Printer выводит сообщения и таблицы в w. Цвета определяются по w:
// в файл или буфер текст пишется без escape-последовательностей.
type Printer struct {
	w io.Writer

	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	info    lipgloss.Style
	muted   lipgloss.Style
	primary lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
}

// NewPrinter создаёт Printer для w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		success: r.NewStyle().Foreground(colorSuccess).Bold(true),
		warning: r.NewStyle().Foreground(colorWarning).Bold(true),
		failure: r.NewStyle().Foreground(colorError).Bold(true),
		info:    r.NewStyle().Foreground(colorInfo),
		muted:   r.NewStyle().Foreground(colorMuted),
		primary: r.NewStyle().Foreground(colorPrimary).Bold(true),
		header:  r.NewStyle().Foreground(colorPrimary).Bold(true).Padding(0, 1),
		cell:    r.NewStyle().Padding(0, 1),
	}
}

// Success печатает сообщение об успехе.
func (p *Printer) Success(format string, args ...any) {
	p.line(p.success.Render("✓ "), format, args...)
}

// Warning печатает предупреждение.
func (p *Printer) Warning(format string, args ...any) {
	p.line(p.warning.Render("⚠ "), format, args...)
}

// Error печатает сообщение об ошибке.
func (p *Printer) Error(format string, args ...any) {
	p.line(p.failure.Render("✗ "), format, args...)
}

// Info печатает информационное сообщение.
func (p *Printer) Info(format string, args ...any) {
	p.line(p.info.Render("ℹ "), format, args...)
}

// Prompt печатает приглашение ко вводу.
func (p *Printer) Prompt(label string) {
	_, _ = fmt.Fprintln(p.w, p.primary.Render(label))
}

// Plain печатает строку без оформления.
func (p *Printer) Plain(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// Section печатает заголовок раздела.
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintln(p.w)
	_, _ = fmt.Fprintln(p.w, p.primary.Render(title))
	_, _ = fmt.Fprintln(p.w, p.muted.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// Menu печатает пронумерованный список пунктов.
func (p *Printer) Menu(title string, items []string) {
	p.Section(title)
	for i, item := range items {
		_, _ = fmt.Fprintf(p.w, "%s %s\n", p.muted.Render(strconv.Itoa(i+1)+"."), item)
	}
}

// Dishes печатает таблицу блюд.
func (p *Printer) Dishes(dishes []domain.Dish) {
	if len(dishes) == 0 {
		p.Info("No dishes found.")
		return
	}
	rows := make([][]string, 0, len(dishes))
	for _, d := range dishes {
		rows = append(rows, []string{
			d.ID,
			d.Name,
			formatTaka(d.Price),
			strconv.Itoa(d.PrepTimeMinutes) + " min",
			d.Description,
		})
	}
	p.table([]string{"Dish ID", "Name", "Price", "Time", "Description"}, rows)
}

// Orders печатает таблицу заказов.
func (p *Printer) Orders(orders []domain.Order) {
	if len(orders) == 0 {
		p.Info("No orders found.")
		return
	}
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			o.ID,
			orPlaceholder(o.CustomerName),
			orPlaceholder(o.DishName),
			quantityCell(o),
			totalCell(o),
			string(o.Status),
		})
	}
	p.table([]string{"Order ID", "Customer", "Dish", "Quantity", "Total", "Status"}, rows)
}

// Report печатает отчёт о продажах.
func (p *Printer) Report(report ordering.SalesReport) {
	p.Section("Sales Report")
	if len(report.Entries) == 0 {
		p.Info("No orders yet.")
	} else {
		rows := make([][]string, 0, len(report.Entries))
		for _, e := range report.Entries {
			rows = append(rows, []string{
				e.OrderID,
				orPlaceholder(e.DishName),
				quantityCell(domain.Order{Quantity: e.Quantity, Status: e.Status}),
				totalCell(domain.Order{TotalCost: e.Total, Status: e.Status}),
				string(e.Status),
			})
		}
		p.table([]string{"Order ID", "Dish", "Quantity", "Total", "Status"}, rows)
	}
	p.Plain("Orders: %d (canceled: %d)", report.Orders, report.Canceled)
	_, _ = fmt.Fprintln(p.w, p.success.Render("Total Sales: "+formatTaka(report.TotalSales)))
}

func (p *Printer) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.muted).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			return p.cell
		})
	_, _ = fmt.Fprintln(p.w, t.Render())
}

func (p *Printer) line(icon, format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, "%s%s\n", icon, fmt.Sprintf(format, args...))
}

func formatTaka(amount int64) string {
	return strconv.FormatInt(amount, 10) + " tk"
}

func orPlaceholder(v string) string {
	if v == "" {
		return domain.CanceledPlaceholder
	}
	return v
}

func quantityCell(o domain.Order) string {
	if o.IsCanceled() {
		return domain.CanceledPlaceholder
	}
	return strconv.Itoa(o.Quantity)
}

func totalCell(o domain.Order) string {
	if o.IsCanceled() {
		return domain.CanceledPlaceholder
	}
	return formatTaka(o.TotalCost)
}
