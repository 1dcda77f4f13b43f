package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/ranch/internal/config"
	"github.com/mamadbah2/ranch/internal/domain/models"
	"github.com/mamadbah2/ranch/internal/service/reporting"
)

const reportTimeout = 2 * time.Minute

// HerdReporter builds (and archives) the herd report.
type HerdReporter interface {
	HerdReport(ctx context.Context) (models.HerdReport, error)
}

// ReportSender delivers the rendered report.
type ReportSender interface {
	SendReport(ctx context.Context, to, text string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	reporter HerdReporter
	sender   ReportSender
	cfg      config.Config
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured
// timezone. sender may be nil when messaging is disabled; the report is then
// only archived.
func NewScheduler(cfg config.Config, reporter HerdReporter, sender ReportSender, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Reporting.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		reporter: reporter,
		sender:   sender,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Start registers the herd report job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule), zap.String("timezone", s.cfg.Reporting.Timezone))

	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.sendHerdReport); err != nil {
		return fmt.Errorf("schedule herd report %q: %w", s.cfg.Reporting.CronSchedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendHerdReport() {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	if err := s.runHerdReport(ctx); err != nil {
		s.logger.Error("herd report failed", zap.Error(err))
	}
}

func (s *Scheduler) runHerdReport(ctx context.Context) error {
	s.logger.Info("generating herd report")

	report, err := s.reporter.HerdReport(ctx)
	if err != nil {
		return fmt.Errorf("generate herd report: %w", err)
	}

	to := s.cfg.WhatsApp.ReportRecipient
	if s.sender == nil || to == "" {
		s.logger.Info("herd report archived, no recipient configured")
		return nil
	}

	if err := s.sender.SendReport(ctx, to, reporting.FormatHerdReport(report)); err != nil {
		return fmt.Errorf("send herd report: %w", err)
	}

	s.logger.Info("herd report sent", zap.String("to", to))
	return nil
}
