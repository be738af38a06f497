package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netbilling/backend/internal/services"
)

func bulkOf(phones ...string) []services.Notification {
	out := make([]services.Notification, 0, len(phones))
	for _, phone := range phones {
		out = append(out, services.Notification{PhoneNumber: phone, Message: "pesan"})
	}
	return out
}

func TestSendBulkNotificationsBatching(t *testing.T) {
	transport := &fakeTransport{}
	env := newTestEnv(transport)
	env.store.Set("wa_max_per_batch", "2")
	env.store.Set("wa_delay_between_messages", "2")
	env.store.Set("wa_delay_between_batches", "30")

	result := env.svc.SendBulkNotifications(bulkOf("0811", "0812", "0813", "0814", "0815"))

	assert.Equal(t, 5, result.Success)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, result.Skipped)
	require.Len(t, transport.sent, 5)

	// Batches of (2, 2, 1): a message delay inside each full batch, a batch
	// delay after every batch but the last.
	assert.Equal(t, []time.Duration{
		2 * time.Second,
		30 * time.Second,
		2 * time.Second,
		30 * time.Second,
	}, env.sleeps)
}

func TestSendBulkNotificationsPreservesOrder(t *testing.T) {
	transport := &fakeTransport{}
	env := newTestEnv(transport)
	env.store.Set("wa_max_per_batch", "3")

	env.svc.SendBulkNotifications(bulkOf("0811", "0812", "0813", "0814"))

	require.Len(t, transport.sent, 4)
	assert.Equal(t, "62811", transport.sent[0].To)
	assert.Equal(t, "62812", transport.sent[1].To)
	assert.Equal(t, "62813", transport.sent[2].To)
	assert.Equal(t, "62814", transport.sent[3].To)
}

func TestSendBulkNotificationsQuotaHardStop(t *testing.T) {
	transport := &fakeTransport{}
	env := newTestEnv(transport)
	env.store.Set("wa_max_per_batch", "2")
	env.store.Set("wa_daily_limit", "3")

	result := env.svc.SendBulkNotifications(bulkOf("0811", "0812", "0813", "0814", "0815"))

	assert.Equal(t, 3, result.Success)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 2, result.Skipped, "everything past the limit is skipped")
	assert.Len(t, transport.sent, 3)
}

func TestSendBulkNotificationsQuotaExhaustedUpFront(t *testing.T) {
	transport := &fakeTransport{}
	env := newTestEnv(transport)
	env.store.Set("wa_daily_limit", "2")
	env.quota.Increment(env.now)
	env.quota.Increment(env.now)

	result := env.svc.SendBulkNotifications(bulkOf("0811", "0812", "0813"))

	assert.Equal(t, 0, result.Success)
	assert.Equal(t, 3, result.Skipped)
	assert.Empty(t, transport.sent)
}

func TestSendBulkNotificationsErrorFormat(t *testing.T) {
	transport := &fakeTransport{failWith: errSendFailed}
	env := newTestEnv(transport)
	env.store.Set("wa_max_retries", "0")

	result := env.svc.SendBulkNotifications(bulkOf("081234567890"))

	assert.Equal(t, 0, result.Success)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "6281234567890: "+errSendFailed.Error(), result.Errors[0])
}

func TestSendBulkNotificationsRateLimitDisabled(t *testing.T) {
	transport := &fakeTransport{}
	env := newTestEnv(transport)
	env.store.Set("wa_rate_limit_enabled", "false")
	env.store.Set("wa_daily_limit", "1")

	result := env.svc.SendBulkNotifications(bulkOf("0811", "0812", "0813"))

	assert.Equal(t, 3, result.Success, "disabled limiting ignores the daily quota")
	assert.Empty(t, env.sleeps, "no pacing when limiting is off")
}

func TestSendBulkNotificationsEmptyInput(t *testing.T) {
	env := newTestEnv(&fakeTransport{})

	result := env.svc.SendBulkNotifications(nil)

	assert.Equal(t, services.BulkResult{}, result)
}

func TestSendToConfiguredGroups(t *testing.T) {
	t.Run("sends to each group with fixed gap", func(t *testing.T) {
		transport := &fakeTransport{}
		env := newTestEnv(transport)
		env.store.Set("wa_groups", "group-a, group-b,group-c")

		result := env.svc.SendToConfiguredGroups("jadwal baru")

		assert.Equal(t, 3, result.Success)
		require.Len(t, transport.sent, 3)
		assert.Equal(t, "group-a", transport.sent[0].To)
		assert.Equal(t, "group-b", transport.sent[1].To)
		assert.Equal(t, "group-c", transport.sent[2].To)
		assert.Equal(t, []time.Duration{time.Second, time.Second}, env.sleeps)
	})

	t.Run("failures do not abort the loop", func(t *testing.T) {
		transport := &fakeTransport{failWith: errSendFailed, failFirst: 1}
		env := newTestEnv(transport)
		env.store.Set("wa_groups", "group-a,group-b")

		result := env.svc.SendToConfiguredGroups("jadwal baru")

		assert.Equal(t, 1, result.Success)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "group-a")
	})

	t.Run("no groups configured", func(t *testing.T) {
		transport := &fakeTransport{}
		env := newTestEnv(transport)

		result := env.svc.SendToConfiguredGroups("jadwal baru")

		assert.Equal(t, services.BulkResult{}, result)
		assert.Empty(t, transport.sent)
	})
}
