// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"content-scoring-service/internal/app/service"
	"content-scoring-service/pkg/locker"
)

const auditLockKey = "audit:scheduler"

// Auditor runs a balance audit.
type Auditor interface {
	Audit(ctx context.Context, repair bool) (*service.AuditReport, error)
}

// AuditConfig holds audit scheduler configuration.
type AuditConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	OnStartup bool
	Repair    bool
}

// AuditScheduler runs the balance audit periodically. A distributed lock held
// for the whole interval keeps other instances from auditing in the same window.
type AuditScheduler struct {
	auditor Auditor
	cfg     AuditConfig
	locker  locker.DistributedLocker
	logger  *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAuditScheduler creates a new AuditScheduler.
func NewAuditScheduler(auditor Auditor, cfg AuditConfig, l locker.DistributedLocker, logger *zap.Logger) *AuditScheduler {
	return &AuditScheduler{
		auditor: auditor,
		cfg:     cfg,
		locker:  l,
		logger:  logger,
	}
}

// Start launches the scheduler loop.
func (s *AuditScheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.logger.Info("starting audit scheduler",
		zap.Duration("interval", s.cfg.Interval),
		zap.Bool("run_on_startup", s.cfg.OnStartup),
		zap.Bool("repair", s.cfg.Repair),
	)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop cancels the loop and waits for a running audit to return.
func (s *AuditScheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.logger.Info("audit scheduler stopped")
}

func (s *AuditScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	if s.cfg.OnStartup {
		s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce audits if no other instance has audited within the current interval.
// The lock is kept on success as a cooldown and released on failure so another
// instance may retry. Reports whether an audit ran.
func (s *AuditScheduler) RunOnce(ctx context.Context) bool {
	acquired, err := s.locker.Acquire(ctx, auditLockKey, s.cfg.Interval)
	if err != nil {
		s.logger.Error("failed to acquire audit lock", zap.Error(err))
		return false
	}
	if !acquired {
		s.logger.Debug("audit already ran on another instance, skipping")
		return false
	}

	auditCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	report, err := s.auditor.Audit(auditCtx, s.cfg.Repair)
	if err != nil {
		if relErr := s.locker.Release(ctx, auditLockKey); relErr != nil {
			s.logger.Error("failed to release audit lock", zap.Error(relErr))
		}
		s.logger.Error("scheduled audit failed, lock released for retry", zap.Error(err))
		return true
	}

	if len(report.Drifts) > 0 {
		s.logger.Warn("scheduled audit found balance drift",
			zap.Int("drifts", len(report.Drifts)),
			zap.Int("repaired", report.Repaired()),
		)
	}

	return true
}
