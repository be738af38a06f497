package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netbilling/backend/internal/services"
)

func TestSendNotificationWithoutTransport(t *testing.T) {
	env := newTestEnv(nil)

	result := env.svc.SendNotification("081234567890", "hi", services.SendOptions{})

	assert.False(t, result.Success)
	assert.Equal(t, "WhatsApp not connected", result.Error)
}

func TestSendNotificationQuotaShortCircuit(t *testing.T) {
	transport := &fakeTransport{}
	env := newTestEnv(transport)
	env.store.Set("wa_daily_limit", "5")
	for i := 0; i < 5; i++ {
		env.quota.Increment(env.now)
	}

	result := env.svc.SendNotification("081234567890", "hi", services.SendOptions{})

	assert.False(t, result.Success)
	assert.Equal(t, "Daily message limit reached", result.Error)
	assert.Empty(t, transport.sent, "nothing should reach the transport")
}

func TestSendNotificationNormalizesPhone(t *testing.T) {
	transport := &fakeTransport{}
	env := newTestEnv(transport)

	result := env.svc.SendNotification("081234567890", "hi", services.SendOptions{})

	require.True(t, result.Success)
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "6281234567890", transport.sent[0].To)
	assert.Equal(t, 1, env.quota.CountForDay(env.now))
}

func TestSendNotificationHeaderFooter(t *testing.T) {
	transport := &fakeTransport{}
	env := newTestEnv(transport)
	env.store.Set("wa_header", "*PT Contoh Net*")
	env.store.Set("wa_footer", "Hubungi CS: 0800")

	result := env.svc.SendNotification("081234567890", "isi pesan", services.SendOptions{})

	require.True(t, result.Success)
	require.Len(t, transport.sent, 1)
	text, ok := transport.sent[0].Payload.(services.TextPayload)
	require.True(t, ok)
	assert.Equal(t, "*PT Contoh Net*\n\nisi pesan\n\nHubungi CS: 0800", text.Text)
}

func TestSendNotificationImage(t *testing.T) {
	t.Run("existing image sends image payload", func(t *testing.T) {
		transport := &fakeTransport{}
		env := newTestEnv(transport)
		env.svc.SetFileExistsFunc(func(string) bool { return true })

		result := env.svc.SendNotification("0812", "caption", services.SendOptions{ImagePath: "promo.jpg"})

		require.True(t, result.Success)
		assert.True(t, result.WithImage)
		require.Len(t, transport.sent, 1)
		img, ok := transport.sent[0].Payload.(services.ImagePayload)
		require.True(t, ok)
		assert.Equal(t, "promo.jpg", img.URL)
		assert.Equal(t, "caption", img.Caption)
	})

	t.Run("missing image file sends text", func(t *testing.T) {
		transport := &fakeTransport{}
		env := newTestEnv(transport)
		env.svc.SetFileExistsFunc(func(string) bool { return false })

		result := env.svc.SendNotification("0812", "caption", services.SendOptions{ImagePath: "promo.jpg"})

		require.True(t, result.Success)
		assert.False(t, result.WithImage)
		require.Len(t, transport.sent, 1)
		_, ok := transport.sent[0].Payload.(services.TextPayload)
		assert.True(t, ok)
	})

	t.Run("failed image send falls back to text", func(t *testing.T) {
		transport := &fakeTransport{failWith: errSendFailed, failFirst: 1}
		env := newTestEnv(transport)
		env.svc.SetFileExistsFunc(func(string) bool { return true })

		result := env.svc.SendNotification("0812", "caption", services.SendOptions{ImagePath: "promo.jpg"})

		require.True(t, result.Success)
		assert.False(t, result.WithImage)
		require.Len(t, transport.sent, 1)
		_, ok := transport.sent[0].Payload.(services.TextPayload)
		assert.True(t, ok)
		assert.Equal(t, 1, env.quota.CountForDay(env.now), "fallback counts once")
	})
}

func TestSendNotificationWithRetry(t *testing.T) {
	t.Run("gives up after max retries", func(t *testing.T) {
		transport := &fakeTransport{failWith: errSendFailed}
		env := newTestEnv(transport)
		env.store.Set("wa_max_retries", "2")

		result := env.svc.SendNotificationWithRetry("0812", "hi", services.SendOptions{})

		assert.False(t, result.Success)
		assert.Equal(t, errSendFailed.Error(), result.Error)
		assert.Equal(t, 3, transport.attempts, "maxRetries+1 attempts")
		assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, env.sleeps,
			"linear backoff between attempts, none after the last")
	})

	t.Run("succeeds mid-way", func(t *testing.T) {
		transport := &fakeTransport{failWith: errSendFailed, failFirst: 2}
		env := newTestEnv(transport)

		result := env.svc.SendNotificationWithRetry("0812", "hi", services.SendOptions{})

		assert.True(t, result.Success)
		assert.Equal(t, 3, transport.attempts)
		assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, env.sleeps)
	})

	t.Run("zero retries means one attempt", func(t *testing.T) {
		transport := &fakeTransport{failWith: errSendFailed}
		env := newTestEnv(transport)
		env.store.Set("wa_max_retries", "0")

		result := env.svc.SendNotificationWithRetry("0812", "hi", services.SendOptions{})

		assert.False(t, result.Success)
		assert.Equal(t, 1, transport.attempts)
		assert.Empty(t, env.sleeps)
	})
}
