package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/service/reporting"
	"github.com/mamadbah2/stockledger/pkg/clients/notify"
)

// DigestBuilder produces the approval-queue summary.
type DigestBuilder interface {
	PendingDigest(ctx context.Context, now time.Time) (reporting.Digest, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	reports  DigestBuilder
	notifier notify.Client
	logger   *zap.Logger
}

// NewScheduler creates a scheduler running the pending digest on schedule
// (standard five-field cron) in loc. A nil notifier only logs the digest.
func NewScheduler(schedule string, loc *time.Location, reports DigestBuilder, notifier notify.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: schedule,
		reports:  reports,
		notifier: notifier,
		logger:   logger,
	}
}

// Start registers the digest job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("digest_cron", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.sendPendingDigest); err != nil {
		return fmt.Errorf("schedule pending digest: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendPendingDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunDigest(ctx); err != nil {
		s.logger.Error("pending digest failed", zap.Error(err))
	}
}

// RunDigest builds the digest once and delivers it.
func (s *Scheduler) RunDigest(ctx context.Context) error {
	digest, err := s.reports.PendingDigest(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}

	if s.notifier == nil {
		s.logger.Info("pending digest", zap.Int("pending", digest.Pending), zap.String("text", digest.Text))
		return nil
	}

	msg := notify.Message{Title: "Inventory approvals", Text: digest.Text, Pending: digest.Pending}
	if err := s.notifier.Send(ctx, msg); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	s.logger.Info("pending digest sent", zap.Int("pending", digest.Pending))
	return nil
}
