package services

import (
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/netbilling/backend/internal/billing"
	"github.com/netbilling/backend/internal/models"
	"github.com/netbilling/backend/internal/settings"
)

// RateLimitSettings is derived from the settings store on every bulk send —
// never cached, so admin changes apply immediately.
type RateLimitSettings struct {
	Enabled              bool
	MaxMessagesPerBatch  int
	DelayBetweenBatches  time.Duration
	DelayBetweenMessages time.Duration
	MaxRetries           int
	DailyMessageLimit    int
}

// SendOptions carries per-message extras. An ImagePath pointing at an
// existing file upgrades the send to image+caption with text fallback.
type SendOptions struct {
	ImagePath string
}

// SendResult is the outcome of one notification attempt. Failures are data,
// not errors: callers log and continue.
type SendResult struct {
	Success   bool   `json:"success"`
	WithImage bool   `json:"with_image,omitempty"`
	Skipped   bool   `json:"skipped,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Error     string `json:"error,omitempty"`
}

// NotificationService is the delivery pipeline: template rendering, rate
// limiting, daily quota, retry and bulk fan-out. All collaborators are
// injected at construction; the transport is attached separately once the
// gateway session is up.
type NotificationService struct {
	settings  settings.Store
	templates *TemplateStore
	quota     QuotaCounter
	billing   billing.Provider
	transport Transport

	logDB *gorm.DB // nil disables delivery logging

	// test hooks
	sleep      func(time.Duration)
	now        func() time.Time
	fileExists func(string) bool
}

func NewNotificationService(store settings.Store, templates *TemplateStore, quota QuotaCounter, provider billing.Provider) *NotificationService {
	return &NotificationService{
		settings:  store,
		templates: templates,
		quota:     quota,
		billing:   provider,
		sleep:     time.Sleep,
		now:       time.Now,
		fileExists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

// SetTransport attaches the message transport. No sends succeed before this
// is called.
func (s *NotificationService) SetTransport(t Transport) {
	s.transport = t
}

// SetLogDB enables delivery logging to the notification_logs table.
func (s *NotificationService) SetLogDB(db *gorm.DB) {
	s.logDB = db
}

// SetSleepFunc replaces the delay function. Test hook.
func (s *NotificationService) SetSleepFunc(fn func(time.Duration)) {
	s.sleep = fn
}

// SetNowFunc replaces the clock. Test hook.
func (s *NotificationService) SetNowFunc(fn func() time.Time) {
	s.now = fn
}

// SetFileExistsFunc replaces the image-path check. Test hook.
func (s *NotificationService) SetFileExistsFunc(fn func(string) bool) {
	s.fileExists = fn
}

// LoadRateLimits reads the live rate-limit configuration.
func (s *NotificationService) LoadRateLimits() RateLimitSettings {
	return RateLimitSettings{
		Enabled:              settings.GetBool(s.settings, "wa_rate_limit_enabled", true),
		MaxMessagesPerBatch:  settings.GetInt(s.settings, "wa_max_per_batch", 10),
		DelayBetweenBatches:  time.Duration(settings.GetInt(s.settings, "wa_delay_between_batches", 30)) * time.Second,
		DelayBetweenMessages: time.Duration(settings.GetInt(s.settings, "wa_delay_between_messages", 2)) * time.Second,
		MaxRetries:           settings.GetInt(s.settings, "wa_max_retries", 3),
		DailyMessageLimit:    settings.GetInt(s.settings, "wa_daily_limit", 1000),
	}
}

// quotaExhausted reports whether today's counter has reached the limit.
func (s *NotificationService) quotaExhausted(limits RateLimitSettings) bool {
	if !limits.Enabled {
		return false
	}
	return s.quota.CountForDay(s.now()) >= limits.DailyMessageLimit
}

// wrapMessage adds the configured company header and footer.
func (s *NotificationService) wrapMessage(message string) string {
	header := s.settings.Get("wa_header", "")
	footer := s.settings.Get("wa_footer", "")
	if header != "" {
		message = header + "\n\n" + message
	}
	if footer != "" {
		message = message + "\n\n" + footer
	}
	return message
}

// SendNotification sends one message to one phone number. The daily-quota
// check runs before any formatting so an exhausted day is a cheap
// short-circuit. An image attempt that fails falls back to plain text —
// the image is best-effort, the text is not.
func (s *NotificationService) SendNotification(phone, message string, opts SendOptions) SendResult {
	if s.transport == nil {
		return SendResult{Success: false, Error: "WhatsApp not connected"}
	}

	limits := s.LoadRateLimits()
	if s.quotaExhausted(limits) {
		return SendResult{Success: false, Error: "Daily message limit reached"}
	}

	to := FormatPhoneNumber(phone)
	finalMessage := s.wrapMessage(message)

	if opts.ImagePath != "" && s.fileExists(opts.ImagePath) {
		err := s.transport.SendMessage(to, ImagePayload{URL: opts.ImagePath, Caption: finalMessage})
		if err == nil {
			s.quota.Increment(s.now())
			return SendResult{Success: true, WithImage: true}
		}
		log.Printf("Notification: image send to %s failed (%v), falling back to text", to, err)
	}

	if err := s.transport.SendMessage(to, TextPayload{Text: finalMessage}); err != nil {
		return SendResult{Success: false, Error: err.Error()}
	}

	s.quota.Increment(s.now())
	return SendResult{Success: true}
}

// SendNotificationWithRetry retries a failed send up to MaxRetries times
// with a linearly growing delay (2s, 4s, 6s, ...). A transport that always
// fails is attempted exactly MaxRetries+1 times.
func (s *NotificationService) SendNotificationWithRetry(phone, message string, opts SendOptions) SendResult {
	limits := s.LoadRateLimits()

	var result SendResult
	for attempt := 0; ; attempt++ {
		result = s.SendNotification(phone, message, opts)
		if result.Success || attempt >= limits.MaxRetries {
			return result
		}
		s.sleep(time.Duration(2000*(attempt+1)) * time.Millisecond)
	}
}

// logDelivery records one attempt when a log database is attached.
func (s *NotificationService) logDelivery(templateKey, recipient, message string, customerID *uint, result SendResult) {
	if s.logDB == nil {
		return
	}

	status := "sent"
	switch {
	case result.Skipped:
		status = "skipped"
	case !result.Success:
		status = "failed"
	}

	entry := models.NotificationLog{
		TemplateKey:  templateKey,
		Recipient:    recipient,
		Message:      message,
		Status:       status,
		ErrorMessage: result.Error,
		CustomerID:   customerID,
		CreatedAt:    s.now(),
	}
	if result.Success {
		sentAt := s.now()
		entry.SentAt = &sentAt
	}
	if err := s.logDB.Create(&entry).Error; err != nil {
		log.Printf("Notification: failed to write delivery log: %v", err)
	}
}
