package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Reminder queues learner notifications for a point in time.
type Reminder interface {
	SendDailyReminders(ctx context.Context, now time.Time) (int, error)
	SendMonthlyReports(ctx context.Context, now time.Time) (int, error)
}

// ReminderWorker runs the reminder jobs on a fixed interval, once at start
// and then on every tick.
type ReminderWorker struct {
	reminder Reminder
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewReminderWorker(reminder Reminder, interval time.Duration, log zerolog.Logger) *ReminderWorker {
	return &ReminderWorker{
		reminder: reminder,
		interval: interval,
		now:      time.Now,
		log:      log.With().Str("component", "reminder_worker").Logger(),
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("ReminderWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("ReminderWorker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ReminderWorker) runOnce(ctx context.Context) {
	now := w.now()

	if n, err := w.reminder.SendDailyReminders(ctx, now); err != nil {
		w.log.Error().Err(err).Msg("Daily reminders failed")
	} else if n > 0 {
		w.log.Info().Int("queued", n).Msg("Daily reminders queued")
	}

	if n, err := w.reminder.SendMonthlyReports(ctx, now); err != nil {
		w.log.Error().Err(err).Msg("Monthly reports failed")
	} else if n > 0 {
		w.log.Info().Int("queued", n).Msg("Monthly reports queued")
	}
}
