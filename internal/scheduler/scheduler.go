package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/config"
)

// SummarySource builds the daily collection summary.
type SummarySource interface {
	DailySummary(ctx context.Context, day time.Time) (string, error)
}

// Notifier delivers the summary; an empty recipient means the operator.
type Notifier interface {
	SendToOperator(ctx context.Context, to, message string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	summaries SummarySource
	notifier  Notifier
	now       func() time.Time
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured
// timezone. notifier may be nil when WhatsApp is disabled; the summary is
// then only logged.
func NewScheduler(cfg config.ReportingConfig, summaries SummarySource, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// Standard 5 field cron expressions (min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:      c,
		schedule:  cfg.CronSchedule,
		summaries: summaries,
		notifier:  notifier,
		now:       time.Now,
		logger:    logger,
	}, nil
}

// Start registers the daily summary job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.sendDailySummary); err != nil {
		return fmt.Errorf("schedule daily summary %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendDailySummary() {
	s.logger.Info("generating daily summary")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := s.summaries.DailySummary(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to generate daily summary", zap.Error(err))
		return
	}

	if s.notifier == nil {
		s.logger.Info("daily summary", zap.String("summary", summary))
		return
	}

	if err := s.notifier.SendToOperator(ctx, "", summary); err != nil {
		s.logger.Error("failed to send daily summary", zap.Error(err))
	} else {
		s.logger.Info("daily summary sent successfully")
	}
}
