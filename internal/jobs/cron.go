package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/logger"
	"github.com/unclebandit/outreach-backend/internal/metrics"
	"github.com/unclebandit/outreach-backend/internal/model"
	"github.com/unclebandit/outreach-backend/internal/repository"
)

// DefaultReminderSpec runs the queue reminder every 15 minutes.
const DefaultReminderSpec = "*/15 * * * *"

// QueueSnapshot is what the reminder job observed on its last run.
type QueueSnapshot struct {
	Pending int
	Due     int
	At      time.Time
}

// CronManager runs the periodic queue reminder.
type CronManager struct {
	cron           *cron.Cron
	touchpointRepo repository.TouchpointRepositoryInterface
	metrics        *metrics.Metrics
	logger         *zap.Logger
	now            func() time.Time
}

func NewCronManager(repo repository.TouchpointRepositoryInterface, m *metrics.Metrics, l *zap.Logger) *CronManager {
	return &CronManager{
		cron:           cron.New(),
		touchpointRepo: repo,
		metrics:        m,
		logger:         logger.OrNop(l),
		now:            time.Now,
	}
}

// SetupJobs registers the reminder on spec. An empty spec uses
// DefaultReminderSpec.
func (cm *CronManager) SetupJobs(spec string) error {
	if spec == "" {
		spec = DefaultReminderSpec
	}
	_, err := cm.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := cm.RunReminder(ctx); err != nil {
			cm.logger.Error("queue reminder failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule queue reminder %q: %w", spec, err)
	}
	cm.logger.Info("cron jobs configured", zap.String("queue_reminder", spec))
	return nil
}

// RunReminder counts touchpoints awaiting approval and approved ones that
// are due, publishes both as gauges and logs a reminder when work is
// waiting.
func (cm *CronManager) RunReminder(ctx context.Context) (QueueSnapshot, error) {
	now := cm.now()
	pending, err := cm.touchpointRepo.CountByStatus(ctx, model.TouchpointPending)
	if err != nil {
		return QueueSnapshot{}, fmt.Errorf("count pending touchpoints: %w", err)
	}
	due, err := cm.touchpointRepo.ListDue(ctx, now)
	if err != nil {
		return QueueSnapshot{}, fmt.Errorf("list due touchpoints: %w", err)
	}

	snap := QueueSnapshot{Pending: pending, Due: len(due), At: now}
	cm.metrics.SetQueueSizes(snap.Pending, snap.Due)

	if snap.Pending == 0 && snap.Due == 0 {
		cm.logger.Debug("outreach queue empty")
		return snap, nil
	}
	cm.logger.Info("outreach queue waiting on operator",
		zap.Int("pending_approval", snap.Pending),
		zap.Int("due_to_send", snap.Due))
	return snap, nil
}

func (cm *CronManager) Start() {
	cm.logger.Info("starting cron scheduler")
	cm.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish.
func (cm *CronManager) Stop() {
	cm.logger.Info("stopping cron scheduler")
	<-cm.cron.Stop().Done()
}
