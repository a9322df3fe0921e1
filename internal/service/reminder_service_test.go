package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/knowlympics/knowlympics-backend/internal/model"
)

type fakeUsers struct {
	inactive []model.User
	active   []model.User
	since    time.Time
	from, to time.Time
}

func (f *fakeUsers) ListInactiveSince(_ context.Context, since time.Time) ([]model.User, error) {
	f.since = since
	return f.inactive, nil
}

func (f *fakeUsers) ListActiveBetween(_ context.Context, from, to time.Time) ([]model.User, error) {
	f.from, f.to = from, to
	return f.active, nil
}

type fakeReporter struct {
	failFor int
}

func (f *fakeReporter) MonthlyReport(_ context.Context, userID int, month string) (*model.MonthlyReport, error) {
	if userID == f.failFor {
		return nil, errors.New("report failed")
	}
	return &model.MonthlyReport{UserID: userID, Month: month, TotalQuizzes: 4, AverageScore: 72.5}, nil
}

func queuedNotifications(t *testing.T, mr interface {
	List(string) ([]string, error)
}) []model.Notification {
	t.Helper()
	items, err := mr.List(config.WorkerKey.NotificationsQueue)
	if err != nil {
		return nil
	}
	out := make([]model.Notification, 0, len(items))
	for _, raw := range items {
		var n model.Notification
		require.NoError(t, json.Unmarshal([]byte(raw), &n))
		out = append(out, n)
	}
	return out
}

func TestReminderService_DailyReminders(t *testing.T) {
	mr, rdb := newRedis(t)
	users := &fakeUsers{inactive: []model.User{
		{ID: 1, Email: "a@example.com", Name: "Ana"},
		{ID: 2, Email: "b@example.com", Name: "Budi"},
	}}
	svc := NewReminderService(users, &fakeReporter{}, rdb, zerolog.Nop())
	now := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	n, err := svc.SendDailyReminders(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, now.Add(-24*time.Hour), users.since)

	notes := queuedNotifications(t, mr)
	require.Len(t, notes, 2)
	assert.Equal(t, NotificationDailyReminder, notes[0].Kind)
	assert.Equal(t, "b@example.com", notes[1].Email)
}

func TestReminderService_NoInactiveUsers(t *testing.T) {
	mr, rdb := newRedis(t)
	svc := NewReminderService(&fakeUsers{}, &fakeReporter{}, rdb, zerolog.Nop())

	n, err := svc.SendDailyReminders(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, mr.Exists(config.WorkerKey.NotificationsQueue))
}

func TestReminderService_MonthlyReportsOncePerMonth(t *testing.T) {
	mr, rdb := newRedis(t)
	users := &fakeUsers{active: []model.User{{ID: 1, Email: "a@example.com"}, {ID: 2, Email: "b@example.com"}, {ID: 3}}}
	svc := NewReminderService(users, &fakeReporter{failFor: 3}, rdb, zerolog.Nop())
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

	n, err := svc.SendMonthlyReports(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), users.from)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), users.to)

	notes := queuedNotifications(t, mr)
	require.Len(t, notes, 2)
	assert.Equal(t, NotificationMonthlyReport, notes[0].Kind)
	assert.Equal(t, "Your quiz report for 2026-02", notes[0].Subject)

	n, err = svc.SendMonthlyReports(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, queuedNotifications(t, mr), 2)
}

func TestReminderService_MonthlyReportsSkipOtherDays(t *testing.T) {
	_, rdb := newRedis(t)
	users := &fakeUsers{active: []model.User{{ID: 1}}}
	svc := NewReminderService(users, &fakeReporter{}, rdb, zerolog.Nop())

	n, err := svc.SendMonthlyReports(context.Background(), time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, users.from.IsZero())
}
