package services

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/netbilling/backend/internal/billing"
	"github.com/netbilling/backend/internal/settings"
)

// DailyReminderService fires due-date reminders once per day at the
// configured notification send time (default 08:00).
type DailyReminderService struct {
	notifier  *NotificationService
	billing   *billing.Manager
	settings  settings.Store
	stopChan  chan struct{}
	wg        sync.WaitGroup
	lastRunAt time.Time
}

func NewDailyReminderService(notifier *NotificationService, manager *billing.Manager, store settings.Store) *DailyReminderService {
	return &DailyReminderService{
		notifier: notifier,
		billing:  manager,
		settings: store,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop.
func (s *DailyReminderService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Println("DailyReminderService started")

		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.checkAndRun()
			case <-s.stopChan:
				log.Println("DailyReminderService stopped")
				return
			}
		}
	}()
}

// Stop stops the scheduler and waits for the loop to exit.
func (s *DailyReminderService) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

// sendTime reads the configured send time, defaulting to 08:00.
func (s *DailyReminderService) sendTime() (int, int) {
	value := s.settings.Get("notification_send_time", "")
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 8, 0
	}

	var hour, minute int
	if _, err := fmt.Sscanf(parts[0], "%d", &hour); err != nil {
		return 8, 0
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &minute); err != nil {
		return 8, 0
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 8, 0
	}
	return hour, minute
}

// checkAndRun fires the reminder run when the clock matches the configured
// minute, at most once per day.
func (s *DailyReminderService) checkAndRun() {
	now := time.Now()
	sendHour, sendMinute := s.sendTime()

	if now.Hour() != sendHour || now.Minute() != sendMinute {
		return
	}

	// Prevent double-firing within the same minute
	todayRun := time.Date(now.Year(), now.Month(), now.Day(), sendHour, sendMinute, 0, 0, now.Location())
	if !s.lastRunAt.IsZero() && s.lastRunAt.After(todayRun.Add(-1*time.Minute)) {
		return
	}
	s.lastRunAt = now

	daysAhead := settings.GetInt(s.settings, "reminder_days_before_due", 3)
	log.Printf("DailyReminderService: running at %02d:%02d (due in %d days)", sendHour, sendMinute, daysAhead)
	s.Run(daysAhead, now)
}

// Run builds reminders for every unpaid invoice due in daysAhead days and
// delivers them as one bulk send.
func (s *DailyReminderService) Run(daysAhead int, now time.Time) BulkResult {
	invoices, err := s.billing.GetInvoicesDueIn(daysAhead, now)
	if err != nil {
		log.Printf("DailyReminderService: invoice query failed: %v", err)
		return BulkResult{}
	}
	if len(invoices) == 0 {
		return BulkResult{}
	}

	var notifications []Notification
	skipped := 0
	for _, invoice := range invoices {
		notification, _, ok := s.notifier.BuildDueDateReminder(invoice.ID)
		if !ok {
			skipped++
			continue
		}
		notifications = append(notifications, notification)
	}

	result := s.notifier.SendBulkNotifications(notifications)
	result.Skipped += skipped
	log.Printf("DailyReminderService: %d reminders sent, %d failed, %d skipped",
		result.Success, result.Failed, result.Skipped)
	return result
}
