package services

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/netbilling/backend/internal/settings"
)

const (
	quotaSettingPrefix = "wa_daily_count_"
	quotaRedisPrefix   = "netbilling:wa:daily:"

	// Date keys older than this are pruned on write; the counter only ever
	// needs today's value.
	quotaRetentionDays = 7

	// Redis keys outlive the day they count by a safety margin, then expire
	// on their own.
	quotaRedisTTL = 48 * time.Hour
)

// QuotaCounter tracks how many messages were sent per calendar day. A date
// key that was never written counts as zero.
type QuotaCounter interface {
	CountForDay(day time.Time) int
	Increment(day time.Time)
}

func quotaDateKey(day time.Time) string {
	return day.Format("2006-01-02")
}

// SettingsQuotaCounter keeps per-day counters as settings rows. The
// read-modify-write on Increment is serialized behind a mutex so two
// overlapping bulk sends cannot both read the same value.
type SettingsQuotaCounter struct {
	mu       sync.Mutex
	settings settings.Store
}

func NewSettingsQuotaCounter(store settings.Store) *SettingsQuotaCounter {
	return &SettingsQuotaCounter{settings: store}
}

func (c *SettingsQuotaCounter) CountForDay(day time.Time) int {
	return settings.GetInt(c.settings, quotaSettingPrefix+quotaDateKey(day), 0)
}

func (c *SettingsQuotaCounter) Increment(day time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := quotaSettingPrefix + quotaDateKey(day)
	count := settings.GetInt(c.settings, key, 0)
	if err := c.settings.Set(key, strconv.Itoa(count+1)); err != nil {
		log.Printf("Quota counter: failed to persist %s: %v", key, err)
		return
	}
	c.pruneOldKeys(day)
}

// pruneOldKeys drops date keys beyond the retention window so the settings
// table does not accumulate one row per day forever.
func (c *SettingsQuotaCounter) pruneOldKeys(day time.Time) {
	all, err := c.settings.All()
	if err != nil {
		return
	}
	cutoff := day.AddDate(0, 0, -quotaRetentionDays).Format("2006-01-02")
	for key := range all {
		if !strings.HasPrefix(key, quotaSettingPrefix) {
			continue
		}
		if strings.TrimPrefix(key, quotaSettingPrefix) < cutoff {
			c.settings.Delete(key)
		}
	}
}

// RedisQuotaCounter uses INCR so check-and-increment overshoot from
// concurrent bulk sends cannot compound; expiry replaces pruning.
type RedisQuotaCounter struct {
	rdb *redis.Client
}

func NewRedisQuotaCounter(rdb *redis.Client) *RedisQuotaCounter {
	return &RedisQuotaCounter{rdb: rdb}
}

func (c *RedisQuotaCounter) CountForDay(day time.Time) int {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, quotaRedisPrefix+quotaDateKey(day)).Int()
	if err != nil {
		return 0
	}
	return val
}

func (c *RedisQuotaCounter) Increment(day time.Time) {
	ctx := context.Background()
	key := quotaRedisPrefix + quotaDateKey(day)
	if err := c.rdb.Incr(ctx, key).Err(); err != nil {
		log.Printf("Quota counter: INCR %s failed: %v", key, err)
		return
	}
	c.rdb.Expire(ctx, key, quotaRedisTTL)
}
