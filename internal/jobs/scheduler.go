package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"worksync/api/internal/config"
	"worksync/api/internal/repository"
)

const notificationStream = "worksync:notifications"

// Scheduler runs the recurring background work: enqueueing reminders for
// shifts about to start and a nightly cleanup task. Delivery itself is
// consumed off the redis stream by the push worker, outside this service.
type Scheduler struct {
	cron   *cron.Cron
	queue  *redis.Client
	shifts *repository.ShiftRepository
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewScheduler(queue *redis.Client, shifts *repository.ShiftRepository, cfg *config.AppConfig, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:   c,
		queue:  queue,
		shifts: shifts,
		cfg:    cfg,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.Shifts.ReminderSchedule, s.enqueueShiftReminders); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.enqueueCleanup); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits briefly for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

// enqueueShiftReminders pushes a reminder task for every scheduled shift
// starting inside the lead window.
func (s *Scheduler) enqueueShiftReminders() {
	ctx := context.Background()
	now := time.Now()

	upcoming, err := s.shifts.ListStartingBetween(ctx, now, now.Add(s.cfg.Shifts.ReminderLead))
	if err != nil {
		s.log.Error().Err(err).Msg("load upcoming shifts failed")
		return
	}

	for _, shift := range upcoming {
		if err := s.enqueueTask(map[string]any{
			"type":       "shift_reminder",
			"shiftId":    shift.ID,
			"employeeId": shift.EmployeeID,
			"startsAt":   shift.Start.Format(time.RFC3339),
		}); err != nil {
			s.log.Error().Err(err).Str("shift_id", shift.ID).Msg("enqueue reminder failed")
		}
	}

	if len(upcoming) > 0 {
		s.log.Info().Int("count", len(upcoming)).Msg("shift reminders enqueued")
	}
}

func (s *Scheduler) enqueueCleanup() {
	if err := s.enqueueTask(map[string]any{
		"type": "cleanup",
	}); err != nil {
		s.log.Error().Err(err).Msg("enqueue cleanup failed")
	}
}

func (s *Scheduler) enqueueTask(payload map[string]any) error {
	if s.queue == nil {
		return nil
	}
	_, err := s.queue.XAdd(context.Background(), &redis.XAddArgs{
		Stream: notificationStream,
		Values: payload,
	}).Result()
	return err
}
