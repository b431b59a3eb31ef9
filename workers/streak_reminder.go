package workers

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"challenge-streak-system/models"
	"challenge-streak-system/services"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// StreakReminderWorker nudges users whose streak is at risk: they completed a
// daily challenge yesterday but not yet today. Runs once a day in the evening.
type StreakReminderWorker struct {
	DB            *gorm.DB
	Notifications *services.NotificationService
}

func NewStreakReminderWorker(db *gorm.DB, notifications *services.NotificationService) *StreakReminderWorker {
	return &StreakReminderWorker{DB: db, Notifications: notifications}
}

// Start schedules the daily job. REMINDER_HOUR (0-23, default 18) controls
// when it fires, in server-local time.
func (w *StreakReminderWorker) Start(ctx context.Context) {
	hour := 18
	if h, err := strconv.Atoi(os.Getenv("REMINDER_HOUR")); err == nil && h >= 0 && h <= 23 {
		hour = h
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("❌ [REMINDER] failed to create scheduler: %v", err)
		return
	}
	sched.Start()

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), 0, 0))),
		gocron.NewTask(func() {
			w.run(ctx)
		}),
	)
	if err != nil {
		log.Printf("❌ [REMINDER] failed to schedule job: %v", err)
		return
	}
	log.Printf("⏰ [REMINDER] streak reminder scheduled daily at %02d:00", hour)

	go func() {
		<-ctx.Done()
		_ = sched.Shutdown()
	}()
}

func (w *StreakReminderWorker) run(ctx context.Context) {
	start, end := reminderWindow(time.Now())

	var users []models.User
	if err := w.DB.WithContext(ctx).
		Where("current_streak > 0 AND last_activity_date >= ? AND last_activity_date < ?", start, end).
		Find(&users).Error; err != nil {
		log.Printf("❌ [REMINDER] DB error: %v", err)
		return
	}

	sent := 0
	for _, u := range users {
		if err := w.Notifications.SendStreakReminder(ctx, u.ExternalUserID, u.CurrentStreak); err != nil {
			log.Printf("⚠️  [REMINDER] failed for %s: %v", u.ExternalUserID, err)
			continue
		}
		sent++
	}
	if sent > 0 {
		log.Printf("⏰ [REMINDER] sent %d streak reminders", sent)
	}
}

// reminderWindow bounds last_activity_date to [yesterday, today): a streak is
// at risk tonight only if it was extended yesterday and not yet today. Rows
// with a positive stored streak but older (or no) activity are long dead; the
// streak engine zeroes them on the user's next completion, and nudging them
// every evening would never stop.
func reminderWindow(now time.Time) (start, end time.Time) {
	end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start = end.AddDate(0, 0, -1)
	return start, end
}
