// Package app собирает хранилища, сервисы и HTTP-эндпоинты метрик.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/eats/internal/health"
	"github.com/vladislavdragonenkov/eats/internal/service/catalog"
	"github.com/vladislavdragonenkov/eats/internal/service/ordering"
	"github.com/vladislavdragonenkov/eats/internal/version"
)

const shutdownTimeout = 5 * time.Second

// App — собранное приложение.
type App struct {
	Config  Config
	Catalog *catalog.Service
	Orders  *ordering.Service
	Health  *health.Handler

	deps     *Dependencies
	gatherer prometheus.Gatherer
	logger   *log.Entry

	mu         sync.Mutex
	metricsSrv *http.Server
}

// New собирает приложение с глобальным реестром Prometheus.
func New(cfg Config, logger *log.Entry) (*App, error) {
	return NewWithRegistry(cfg, logger, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewWithRegistry собирает приложение с заданным реестром метрик.
func NewWithRegistry(cfg Config, logger *log.Entry, registerer prometheus.Registerer, gatherer prometheus.Gatherer) (*App, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	deps, err := NewDependencies(cfg, logger, registerer)
	if err != nil {
		return nil, err
	}

	catalogSvc := catalog.NewService(deps.Dishes,
		catalog.WithLogger(logger.WithField("layer", "catalog")),
		catalog.WithMetrics(deps.BusinessMetrics),
	)
	ordersSvc := ordering.NewService(deps.Orders, catalogSvc,
		ordering.WithLogger(logger.WithField("layer", "ordering")),
		ordering.WithMetrics(deps.BusinessMetrics),
	)

	healthHandler := health.NewHandler(version.GetVersion())
	for name, pinger := range deps.Pingers {
		healthHandler.RegisterChecker(name, health.NewStorageChecker(name, pinger))
	}

	return &App{
		Config:   cfg,
		Catalog:  catalogSvc,
		Orders:   ordersSvc,
		Health:   healthHandler,
		deps:     deps,
		gatherer: gatherer,
		logger:   logger,
	}, nil
}

// Handler возвращает HTTP-обработчик /metrics, /healthz, /readyz и /livez.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", a.Health)
	mux.HandleFunc("/readyz", a.Health.ReadinessHandler)
	mux.HandleFunc("/livez", health.LivenessHandler)
	return mux
}

// StartMetricsServer запускает HTTP-сервер метрик, если задан MetricsAddr.
// Сервер останавливается при отмене ctx. Без адреса возвращает nil,
// повторный вызов возвращает уже запущенный сервер.
func (a *App) StartMetricsServer(ctx context.Context) (*http.Server, error) {
	addr := a.Config.MetricsAddr
	if addr == "" {
		return nil, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.metricsSrv != nil {
		return a.metricsSrv, nil
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Infof("метрики доступны по адресу %s/metrics", lis.Addr())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, a.logger)
	}()

	a.metricsSrv = srv
	return srv, nil
}

// Serve держит HTTP-сервер метрик до отмены ctx.
func (a *App) Serve(ctx context.Context) error {
	if a.Config.MetricsAddr == "" {
		return errors.New("metrics address is not configured")
	}
	if _, err := a.StartMetricsServer(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	a.logger.Info("получен сигнал остановки")
	return nil
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
