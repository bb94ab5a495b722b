package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Jobs is the periodic work run against the tournaments.
type Jobs interface {
	ExpireInvitations(ctx context.Context) int
	PushActiveStatuses(ctx context.Context) int
}

type Config struct {
	StatusPushSpec      string
	InvitationSweepSpec string
	JobTimeout          time.Duration
}

type Scheduler struct {
	cron    *cron.Cron
	jobs    Jobs
	logger  *zap.Logger
	timeout time.Duration
}

func New(jobs Jobs, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scheduler")
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})))
	return &Scheduler{cron: c, jobs: jobs, logger: logger, timeout: 20 * time.Second}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start(cfg Config) error {
	if cfg.JobTimeout > 0 {
		s.timeout = cfg.JobTimeout
	}
	if _, err := s.cron.AddFunc(cfg.InvitationSweepSpec, s.runInvitationSweep); err != nil {
		return fmt.Errorf("schedule invitation sweep %q: %w", cfg.InvitationSweepSpec, err)
	}
	if _, err := s.cron.AddFunc(cfg.StatusPushSpec, s.runStatusPush); err != nil {
		return fmt.Errorf("schedule status push %q: %w", cfg.StatusPushSpec, err)
	}
	s.cron.Start()
	s.logger.Info("cron scheduler started",
		zap.String("status_push", cfg.StatusPushSpec),
		zap.String("invitation_sweep", cfg.InvitationSweepSpec))
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("cron scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("cron scheduler stop timed out")
	}
}

func (s *Scheduler) runInvitationSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if n := s.jobs.ExpireInvitations(ctx); n > 0 {
		s.logger.Info("invitation sweep completed", zap.Int("expired", n))
	}
}

func (s *Scheduler) runStatusPush() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	n := s.jobs.PushActiveStatuses(ctx)
	s.logger.Debug("tournament statuses pushed", zap.Int("tournaments", n))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ l *zap.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
