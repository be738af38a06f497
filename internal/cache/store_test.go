package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netbilling/backend/internal/cache"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newStore(clock *fakeClock) *cache.Store {
	return cache.New(cache.WithNowFunc(clock.Now))
}

func TestStore_TTL(t *testing.T) {
	t.Run("set then get within ttl", func(t *testing.T) {
		clock := &fakeClock{t: time.Now()}
		s := newStore(clock)

		s.Set("k", "v", 5*time.Minute)
		assert.Equal(t, "v", s.Get("k"))
		assert.True(t, s.Has("k"))
	})

	t.Run("expired entry is never returned", func(t *testing.T) {
		clock := &fakeClock{t: time.Now()}
		s := newStore(clock)

		s.Set("k", "v", time.Minute)
		clock.Advance(time.Minute + time.Second)

		assert.Nil(t, s.Get("k"))
		assert.False(t, s.Has("k"))
	})

	t.Run("zero ttl uses store default", func(t *testing.T) {
		clock := &fakeClock{t: time.Now()}
		s := cache.New(cache.WithNowFunc(clock.Now), cache.WithDefaultTTL(10*time.Second))

		s.Set("k", 1, 0)
		clock.Advance(9 * time.Second)
		assert.Equal(t, 1, s.Get("k"))
		clock.Advance(2 * time.Second)
		assert.Nil(t, s.Get("k"))
	})

	t.Run("set overwrites existing entry", func(t *testing.T) {
		clock := &fakeClock{t: time.Now()}
		s := newStore(clock)

		s.Set("k", "old", time.Minute)
		s.Set("k", "new", time.Minute)
		assert.Equal(t, "new", s.Get("k"))
	})
}

func TestStore_Delete(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newStore(clock)

	s.Set("k", "v", time.Minute)
	assert.True(t, s.Delete("k"))
	assert.False(t, s.Delete("k"))
	assert.Nil(t, s.Get("k"))
}

func TestStore_Clear(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newStore(clock)

	s.Set("a", 1, time.Minute)
	s.Set("b", 2, time.Minute)
	s.Clear()

	assert.Nil(t, s.Get("a"))
	assert.Nil(t, s.Get("b"))
	assert.Equal(t, 0, s.GetStats().TotalEntries)
}

func TestStore_PatternInvalidation(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newStore(clock)

	s.Set("a:1", "x", time.Minute)
	s.Set("a:2", "y", time.Minute)
	s.Set("b:1", "z", time.Minute)

	removed := s.InvalidatePattern("a:*")
	assert.Equal(t, 2, removed)

	assert.Nil(t, s.Get("a:1"))
	assert.Nil(t, s.Get("a:2"))
	assert.Equal(t, "z", s.Get("b:1"))
}

func TestStore_EntriesByPattern(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newStore(clock)

	s.Set("mikrotik:profiles", "p", time.Minute)
	s.Set("mikrotik:secrets", "s", 10*time.Second)
	s.Set("genieacs:devices", "d", time.Minute)

	clock.Advance(30 * time.Second) // expires mikrotik:secrets

	entries := s.EntriesByPattern("mikrotik:*")
	require.Len(t, entries, 1)
	assert.Equal(t, "mikrotik:profiles", entries[0].Key)
	assert.Equal(t, "p", entries[0].Value)

	// inspection must not delete anything
	assert.Equal(t, "p", s.Get("mikrotik:profiles"))
}

func TestStore_Stats(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newStore(clock)

	s.Set("live1", "v", time.Hour)
	s.Set("live2", "v", time.Hour)
	s.Set("dead", "v", time.Second)

	clock.Advance(time.Minute)

	stats := s.GetStats()
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 2, stats.ValidEntries)
	assert.Equal(t, 1, stats.ExpiredEntries)
	assert.Equal(t, time.Minute, stats.AverageAge)
	assert.Greater(t, stats.MemoryUsage, 0)
}

func TestStore_Sweep(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newStore(clock)

	s.Set("a", 1, time.Second)
	s.Set("b", 2, time.Hour)

	clock.Advance(2 * time.Second)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 0, s.Sweep())

	stats := s.GetStats()
	assert.Equal(t, 1, stats.TotalEntries)
}

func TestGenerateKey(t *testing.T) {
	t.Run("order independent", func(t *testing.T) {
		k1 := cache.GenerateKey("svc", "ep", map[string]string{"b": "1", "a": "2"})
		k2 := cache.GenerateKey("svc", "ep", map[string]string{"a": "2", "b": "1"})
		assert.Equal(t, k1, k2)
		assert.Equal(t, "svc:ep:a=2&b=1", k1)
	})

	t.Run("no params", func(t *testing.T) {
		assert.Equal(t, "svc:ep", cache.GenerateKey("svc", "ep", nil))
	})
}
