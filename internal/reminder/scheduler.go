package reminder

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"TaskFlow/internal/config"
)

// runTimeout bounds a single scheduled run.
const runTimeout = 10 * time.Minute

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Scheduler fires the reminder sweeps on the configured cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	service *ReminderService
	logger  *zap.Logger
}

func NewScheduler(cfg *config.AppConfig, service *ReminderService, logger *zap.Logger) (*Scheduler, error) {
	logger = logger.Named("scheduler")
	loc, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "load reminder timezone %q", cfg.Reminder.Timezone)
	}
	adapter := cronLogger{logger: logger.Sugar()}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(adapter),
		cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
	)

	s := &Scheduler{cron: c, service: service, logger: logger}
	if _, err := c.AddFunc(cfg.Reminder.Schedule, s.run); err != nil {
		return nil, errors.Wrapf(err, "invalid reminder schedule %q", cfg.Reminder.Schedule)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	s.service.Run(ctx)
}

// Start ties the cron loop to the fx lifecycle.
func (s *Scheduler) Start(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.cron.Start()
			for _, e := range s.cron.Entries() {
				s.logger.Info("reminder scheduler started", zap.Time("next_run", e.Next))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.logger.Info("stopping reminder scheduler")
			select {
			case <-s.cron.Stop().Done():
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		},
	})
}
