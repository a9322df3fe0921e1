package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	NotificationDailyReminder = "daily_reminder"
	NotificationMonthlyReport = "monthly_report"

	reminderIdleWindow = 24 * time.Hour
	reportMarkerTTL    = 40 * 24 * time.Hour
)

// UserFinder selects learners by recent activity.
type UserFinder interface {
	ListInactiveSince(ctx context.Context, since time.Time) ([]model.User, error)
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]model.User, error)
}

// MonthlyReporter builds a learner's report for a YYYY-MM month.
type MonthlyReporter interface {
	MonthlyReport(ctx context.Context, userID int, month string) (*model.MonthlyReport, error)
}

// ReminderService queues reminder and report notifications for the mailer.
type ReminderService struct {
	users   UserFinder
	reports MonthlyReporter
	rdb     *redis.Client
	log     zerolog.Logger
}

func NewReminderService(users UserFinder, reports MonthlyReporter, rdb *redis.Client, log zerolog.Logger) *ReminderService {
	return &ReminderService{
		users:   users,
		reports: reports,
		rdb:     rdb,
		log:     log.With().Str("component", "reminder_service").Logger(),
	}
}

// SendDailyReminders nudges learners with no attempt in the last 24 hours.
func (s *ReminderService) SendDailyReminders(ctx context.Context, now time.Time) (int, error) {
	users, err := s.users.ListInactiveSince(ctx, now.Add(-reminderIdleWindow))
	if err != nil {
		return 0, fmt.Errorf("list inactive users: %w", err)
	}

	notes := make([]model.Notification, 0, len(users))
	for _, u := range users {
		notes = append(notes, model.Notification{
			Kind:    NotificationDailyReminder,
			UserID:  u.ID,
			Email:   u.Email,
			Subject: "Keep your streak going",
			Data:    map[string]any{"name": u.Name},
		})
	}
	return len(notes), s.enqueue(ctx, notes)
}

// SendMonthlyReports queues last month's report for every learner who took
// a quiz in it. It only acts on the first day of a month, once per month.
func (s *ReminderService) SendMonthlyReports(ctx context.Context, now time.Time) (int, error) {
	if now.Day() != 1 {
		return 0, nil
	}
	to := startOfMonth(now)
	from := to.AddDate(0, -1, 0)
	month := from.Format(monthLayout)

	first, err := s.rdb.SetNX(ctx, config.CacheKey.MonthlyReportKey(month), 1, reportMarkerTTL).Result()
	if err != nil {
		return 0, fmt.Errorf("mark report month: %w", err)
	}
	if !first {
		return 0, nil
	}

	users, err := s.users.ListActiveBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("list active users: %w", err)
	}

	notes := make([]model.Notification, 0, len(users))
	for _, u := range users {
		report, err := s.reports.MonthlyReport(ctx, u.ID, month)
		if err != nil {
			s.log.Warn().Err(err).Int("user_id", u.ID).Str("month", month).Msg("Skipping monthly report")
			continue
		}
		notes = append(notes, model.Notification{
			Kind:    NotificationMonthlyReport,
			UserID:  u.ID,
			Email:   u.Email,
			Subject: "Your quiz report for " + month,
			Data:    map[string]any{"report": report},
		})
	}
	return len(notes), s.enqueue(ctx, notes)
}

func (s *ReminderService) enqueue(ctx context.Context, notes []model.Notification) error {
	if len(notes) == 0 {
		return nil
	}
	payloads := make([]interface{}, 0, len(notes))
	for _, n := range notes {
		raw, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("encode notification: %w", err)
		}
		payloads = append(payloads, raw)
	}
	return s.rdb.RPush(ctx, config.WorkerKey.NotificationsQueue, payloads...).Err()
}
