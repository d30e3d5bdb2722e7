package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"CryptoSignal/internal/domain/models"
	"CryptoSignal/internal/service/cache"
	applogger "CryptoSignal/pkg/logger"
)

// ScanConfig lists the coins analyzed on each scheduled run.
type ScanConfig struct {
	Enabled     bool     `yaml:"enabled" default:"false"`
	Cron        string   `yaml:"cron" default:"0 */15 * * * *"`
	Coins       []string `yaml:"coins"`
	Timeframe   string   `yaml:"timeframe" default:"7d"`
	Concurrency int      `yaml:"concurrency" default:"4"`
	RunOnStart  bool     `yaml:"run_on_start" default:"false"`
}

// Scanner runs Report for every configured coin on a cron schedule.
type Scanner struct {
	cron     *cron.Cron
	insights *InsightsUseCase
	cfg      ScanConfig
	log      *applogger.Logger

	lock    cache.Locker
	lockTTL time.Duration

	mu   sync.Mutex
	last map[string]*models.SignalReport
}

const scanLockKey = "scanner:lock"

func NewScanner(insights *InsightsUseCase, cfg ScanConfig, log *applogger.Logger) *Scanner {
	if log == nil {
		log = applogger.Nop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Scanner{
		cron:     cron.New(cron.WithSeconds()),
		insights: insights,
		cfg:      cfg,
		log:      log,
		last:     map[string]*models.SignalReport{},
	}
}

// SetLock makes each run hold l for at most ttl, so only one instance
// sharing the lock scans at a time.
func (s *Scanner) SetLock(l cache.Locker, ttl time.Duration) {
	s.lock = l
	s.lockTTL = ttl
}

// Register adds the scan task under ctx. Cancelling ctx aborts in-flight scans.
func (s *Scanner) Register(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.Cron, func() {
		if err := s.ScanOnce(ctx); err != nil {
			s.log.Error("scan failed", applogger.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

func (s *Scanner) Start() {
	s.cron.Start()
	s.log.Info("scanner started",
		applogger.String("cron", s.cfg.Cron), applogger.Strings("coins", s.cfg.Coins))
}

// Stop waits for a running scan to finish or ctx to expire.
func (s *Scanner) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.log.Info("scanner stopped")
}

// ScanOnce analyzes every configured coin with bounded concurrency. A coin
// that fails is logged and skipped; only context cancellation is returned.
func (s *Scanner) ScanOnce(ctx context.Context) error {
	start := time.Now()
	if s.lock != nil {
		ok, err := s.lock.TryLock(ctx, scanLockKey, s.lockTTL)
		if err != nil {
			s.log.Warn("scan lock unavailable, scanning anyway", applogger.Error(err))
		} else if !ok {
			s.log.Debug("scan skipped, lock held elsewhere")
			return nil
		} else {
			defer func() {
				if err := s.lock.Unlock(context.WithoutCancel(ctx), scanLockKey); err != nil {
					s.log.Warn("scan unlock failed", applogger.Error(err))
				}
			}()
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, coin := range s.cfg.Coins {
		coin := coin
		g.Go(func() error {
			report, err := s.insights.Report(gctx, coin, s.cfg.Timeframe)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.log.Warn("scan coin failed", applogger.String("coin", coin), applogger.Error(err))
				return nil
			}
			s.mu.Lock()
			s.last[coin] = report
			s.mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	s.log.Debug("scan finished",
		applogger.Int("coins", len(s.cfg.Coins)), applogger.Duration("took", time.Since(start)))
	return err
}

// Latest returns the most recent scanned report for coin.
func (s *Scanner) Latest(coin string) (*models.SignalReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.last[coin]
	return r, ok
}
