package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"CryptoSignal/internal/service/cache"
	"CryptoSignal/internal/service/ratelimit"
	"CryptoSignal/internal/usecase"
	"CryptoSignal/pkg/config"
	xhttp "CryptoSignal/pkg/http"
	pkgkafka "CryptoSignal/pkg/kafka"
	applogger "CryptoSignal/pkg/logger"
)

const maintenanceInterval = time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg      *config.Config
	log      *applogger.Logger
	http     *xhttp.Server
	scanner  *usecase.Scanner
	consumer *pkgkafka.Consumer
	requests pkgkafka.MessageHandler
	limiter  *ratelimit.Limiter
	memCache *cache.TTLCache
}

// Components groups the optional parts of an App. Nil members are skipped.
type Components struct {
	Scanner  *usecase.Scanner
	Consumer *pkgkafka.Consumer
	Requests pkgkafka.MessageHandler
	Limiter  *ratelimit.Limiter
	MemCache *cache.TTLCache
}

func New(cfg *config.Config, log *applogger.Logger, httpServer *xhttp.Server, c Components) *App {
	if log == nil {
		log = applogger.Nop()
	}
	return &App{
		cfg:      cfg,
		log:      log,
		http:     httpServer,
		scanner:  c.Scanner,
		consumer: c.Consumer,
		requests: c.Requests,
		limiter:  c.Limiter,
		memCache: c.MemCache,
	}
}

// Run starts every component and blocks until SIGINT/SIGTERM, ctx
// cancellation or an HTTP listener failure, then shuts down.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.log.Info("app starting",
		applogger.String("environment", a.cfg.Environment),
		applogger.Bool("scanner", a.scanner != nil),
		applogger.Bool("kafka_requests", a.consumer != nil && a.requests != nil))

	if a.scanner != nil {
		if err := a.scanner.Register(ctx); err != nil {
			return err
		}
		a.scanner.Start()
		if a.cfg.Scanner.RunOnStart {
			go func() {
				if err := a.scanner.ScanOnce(ctx); err != nil {
					a.log.Warn("initial scan failed", applogger.Error(err))
				}
			}()
		}
	}

	if a.consumer != nil && a.requests != nil {
		a.consumer.RegisterHandler(a.requests)
		if err := a.consumer.Start(); err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
		a.log.Info("analysis request consumer started", applogger.String("topic", a.requests.Topic()))
	}

	go a.maintain(ctx)

	errs := a.http.Start()
	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err, ok := <-errs:
		if ok && err != nil {
			a.log.Error("http server failed", applogger.Error(err))
			runErr = err
		}
	}
	return errors.Join(runErr, a.shutdown())
}

// maintain prunes idle rate limiter entries and expired cache entries.
func (a *App) maintain(ctx context.Context) {
	if a.limiter == nil && a.memCache == nil {
		return
	}
	t := time.NewTicker(maintenanceInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			var pruned, swept int
			if a.limiter != nil {
				pruned = a.limiter.Prune(10 * maintenanceInterval)
			}
			if a.memCache != nil {
				swept = a.memCache.Sweep()
			}
			if pruned > 0 || swept > 0 {
				a.log.Debug("maintenance", applogger.Int("limiters_pruned", pruned), applogger.Int("cache_swept", swept))
			}
		}
	}
}

// shutdown stops the HTTP server first so no new work arrives, then the
// background workers. Infrastructure clients are released by the injector's
// cleanup.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.http.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.scanner != nil {
		a.scanner.Stop(ctx)
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
