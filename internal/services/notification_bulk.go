package services

import (
	"log"
	"strings"
	"time"
)

// Notification is one transient fan-out job: built per recipient, consumed
// immediately, never persisted.
type Notification struct {
	PhoneNumber string
	Message     string
	Options     SendOptions
}

// BulkResult aggregates one bulk run. Quota and disabled-template outcomes
// count as skipped, which is distinct from failed.
type BulkResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// SendBulkNotifications delivers a list of notifications in input order
// under the live rate-limit configuration. Messages are grouped into
// batches of MaxMessagesPerBatch with DelayBetweenMessages between
// consecutive messages in a batch (not after the last) and
// DelayBetweenBatches between batches (not after the last). Quota
// exhaustion is a hard stop: everything not yet attempted is skipped.
func (s *NotificationService) SendBulkNotifications(notifications []Notification) BulkResult {
	result := BulkResult{}
	if len(notifications) == 0 {
		return result
	}

	limits := s.LoadRateLimits()

	// Rate limiting off: send everything back to back.
	if !limits.Enabled {
		for _, n := range notifications {
			s.sendBulkItem(n, &result)
		}
		return result
	}

	batchSize := limits.MaxMessagesPerBatch
	if batchSize <= 0 {
		batchSize = 1
	}

	for start := 0; start < len(notifications); start += batchSize {
		end := start + batchSize
		if end > len(notifications) {
			end = len(notifications)
		}
		batch := notifications[start:end]

		for i, n := range batch {
			if s.quotaExhausted(limits) {
				// Hard stop: the rest of this batch and every later batch.
				remaining := (len(batch) - i) + (len(notifications) - end)
				result.Skipped += remaining
				log.Printf("Bulk send: daily limit reached, skipping %d remaining notifications", remaining)
				return result
			}

			s.sendBulkItem(n, &result)

			if i < len(batch)-1 {
				s.sleep(limits.DelayBetweenMessages)
			}
		}

		if end < len(notifications) {
			s.sleep(limits.DelayBetweenBatches)
		}
	}

	return result
}

// sendBulkItem sends one notification through the retry wrapper, trapping
// anything unexpected so a single recipient can never abort the run.
func (s *NotificationService) sendBulkItem(n Notification, result *BulkResult) {
	defer func() {
		if r := recover(); r != nil {
			result.Failed++
			result.Errors = append(result.Errors, FormatPhoneNumber(n.PhoneNumber)+": internal error")
			log.Printf("Bulk send: panic sending to %s: %v", n.PhoneNumber, r)
		}
	}()

	res := s.SendNotificationWithRetry(n.PhoneNumber, n.Message, n.Options)
	if res.Success {
		result.Success++
		return
	}
	result.Failed++
	result.Errors = append(result.Errors, FormatPhoneNumber(n.PhoneNumber)+": "+res.Error)
}

// SendToConfiguredGroups sends a pre-built message to every group id in the
// wa_groups setting (comma separated), with a fixed 1 second gap. Individual
// failures are logged and do not abort the loop.
func (s *NotificationService) SendToConfiguredGroups(message string) BulkResult {
	result := BulkResult{}
	if s.transport == nil {
		return result
	}

	raw := s.settings.Get("wa_groups", "")
	if raw == "" {
		return result
	}

	groups := strings.Split(raw, ",")
	for i, group := range groups {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}

		if err := s.transport.SendMessage(group, TextPayload{Text: message}); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, group+": "+err.Error())
			log.Printf("Group broadcast: send to %s failed: %v", group, err)
		} else {
			result.Success++
		}

		if i < len(groups)-1 {
			s.sleep(1 * time.Second)
		}
	}

	return result
}
