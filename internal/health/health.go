// Package health отдаёт состояние файлов данных по HTTP.
package health

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Status представляет статус компонента
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Check — результат одной проверки.
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Response — тело ответа /healthz.
type Response struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// Checker проверяет один компонент.
type Checker interface {
	Check() Check
}

// Pinger — компонент, доступность которого можно проверить вызовом Ping.
// Ему удовлетворяет flatfile.Table.
type Pinger interface {
	Ping() error
}

// Handler обрабатывает /healthz и /readyz.
type Handler struct {
	mu        sync.RWMutex
	checkers  map[string]Checker
	version   string
	startTime time.Time
}

// NewHandler создаёт новый health handler
func NewHandler(version string) *Handler {
	return &Handler{
		checkers:  make(map[string]Checker),
		version:   version,
		startTime: time.Now(),
	}
}

// RegisterChecker регистрирует проверку компонента
func (h *Handler) RegisterChecker(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// Run выполняет все проверки и собирает общий ответ.
func (h *Handler) Run() Response {
	h.mu.RLock()
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	checkers := make(map[string]Checker, len(h.checkers))
	for k, v := range h.checkers {
		checkers[k] = v
	}
	h.mu.RUnlock()
	sort.Strings(names)

	response := Response{
		Status:        StatusHealthy,
		Timestamp:     time.Now(),
		Checks:        make(map[string]Check, len(names)),
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}
	for _, name := range names {
		check := checkers[name].Check()
		response.Checks[name] = check
		if check.Status == StatusUnhealthy {
			response.Status = StatusUnhealthy
		}
	}
	return response
}

// ServeHTTP обрабатывает HTTP запрос
func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	response := h.Run()

	statusCode := http.StatusOK
	if response.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// ReadinessHandler отвечает 200, только если все проверки прошли.
func (h *Handler) ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	if h.Run().Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LivenessHandler простой liveness probe (всегда возвращает 200)
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// StorageChecker проверяет доступность файла таблицы.
type StorageChecker struct {
	name   string
	target Pinger
}

// NewStorageChecker создаёт проверку для target.
func NewStorageChecker(name string, target Pinger) *StorageChecker {
	return &StorageChecker{name: name, target: target}
}

// Check выполняет проверку
func (c *StorageChecker) Check() Check {
	start := time.Now()
	err := c.target.Ping()
	check := Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	}
	return check
}
