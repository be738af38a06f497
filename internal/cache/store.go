package cache

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	DefaultTTL           = 5 * time.Minute
	DefaultSweepInterval = 60 * time.Second
)

// Entry is a single cached value with its expiry bookkeeping.
type Entry struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Stats describes the store contents at the time of the call. It is computed
// by a full scan, not maintained incrementally.
type Stats struct {
	TotalEntries   int           `json:"total_entries"`
	ValidEntries   int           `json:"valid_entries"`
	ExpiredEntries int           `json:"expired_entries"`
	AverageAge     time.Duration `json:"average_age"`
	MemoryUsage    int           `json:"memory_usage"`
}

// Store is a TTL key/value store used to memoize expensive upstream calls
// (router API, device management API). Expired entries are never returned:
// every read checks the expiry predicate, and a background sweep keeps the
// map from growing without bound between reads.
type Store struct {
	mu         sync.Mutex
	entries    map[string]*Entry
	defaultTTL time.Duration

	sweepEvery time.Duration
	stopSweep  chan struct{}
	sweepOnce  sync.Once

	// now is swappable so tests can advance time
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithDefaultTTL overrides the TTL used by Set when none is given.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *Store) { s.defaultTTL = ttl }
}

// WithSweepInterval overrides the background sweep cadence.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) { s.sweepEvery = d }
}

// WithNowFunc replaces the clock. Test hook.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store. Call StartSweeper to enable the background sweep;
// correctness does not depend on it.
func New(opts ...Option) *Store {
	s := &Store{
		entries:    make(map[string]*Entry),
		defaultTTL: DefaultTTL,
		sweepEvery: DefaultSweepInterval,
		stopSweep:  make(chan struct{}),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// expired reports whether e is past its expiry at time t. Sweep and lazy
// expiry both go through this predicate so they cannot disagree.
func expired(e *Entry, t time.Time) bool {
	return t.After(e.ExpiresAt)
}

// Set stores value under key with the given TTL, overwriting any existing
// entry. A zero ttl uses the store default.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := s.now()
	s.mu.Lock()
	s.entries[key] = &Entry{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	s.mu.Unlock()
}

// Get returns the value for key, or nil if absent or expired. An expired
// entry is deleted on the spot.
func (s *Store) Get(key string) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil
	}
	if expired(entry, s.now()) {
		delete(s.entries, key)
		return nil
	}
	return entry.Value
}

// Has reports whether key holds a live entry. Same expiry semantics as Get.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return false
	}
	if expired(entry, s.now()) {
		delete(s.entries, key)
		return false
	}
	return true
}

// Delete removes key. Returns true iff an entry was present.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	count := len(s.entries)
	s.entries = make(map[string]*Entry)
	s.mu.Unlock()
	log.Printf("Cache cleared: %d entries removed", count)
}

// patternToRegexp converts a glob with '*' wildcards into an anchored
// regexp. All other characters match literally.
func patternToRegexp(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.Compile("^" + strings.Join(parts, ".*") + "$")
}

// InvalidatePattern deletes every key matching the glob pattern and returns
// the number of entries removed. O(n) scan over the key set.
func (s *Store) InvalidatePattern(pattern string) int {
	re, err := patternToRegexp(pattern)
	if err != nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key := range s.entries {
		if re.MatchString(key) {
			delete(s.entries, key)
			count++
		}
	}
	return count
}

// EntriesByPattern returns full entries (including timestamps) for every
// live key matching the glob pattern, without deleting anything. Used by the
// admin inspection endpoints.
func (s *Store) EntriesByPattern(pattern string) []Entry {
	re, err := patternToRegexp(pattern)
	if err != nil {
		return nil
	}

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []Entry
	for key, entry := range s.entries {
		if !re.MatchString(key) || expired(entry, now) {
			continue
		}
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// GetStats scans the whole store and returns aggregate numbers. AverageAge
// is the mean age of non-expired entries only.
func (s *Store) GetStats() Stats {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{TotalEntries: len(s.entries)}
	var totalAge time.Duration
	for key, entry := range s.entries {
		if expired(entry, now) {
			stats.ExpiredEntries++
			continue
		}
		stats.ValidEntries++
		totalAge += now.Sub(entry.CreatedAt)
		stats.MemoryUsage += len(key) + len(fmt.Sprintf("%v", entry.Value))
	}
	if stats.ValidEntries > 0 {
		stats.AverageAge = totalAge / time.Duration(stats.ValidEntries)
	}
	return stats
}

// Sweep removes every expired entry and returns the number removed. Runs on
// a timer via StartSweeper; safe to call directly.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key, entry := range s.entries {
		if expired(entry, now) {
			delete(s.entries, key)
			count++
		}
	}
	return count
}

// StartSweeper runs the periodic sweep in a goroutine until Stop is called.
func (s *Store) StartSweeper() {
	go func() {
		ticker := time.NewTicker(s.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					log.Printf("Cache sweep: %d expired entries removed", n)
				}
			case <-s.stopSweep:
				return
			}
		}
	}()
}

// Stop terminates the background sweeper.
func (s *Store) Stop() {
	s.sweepOnce.Do(func() { close(s.stopSweep) })
}

// GenerateKey builds a deterministic cache key from a service, endpoint and
// parameter map. Parameter names are sorted so the same logical request maps
// to the same key regardless of insertion order.
func GenerateKey(service, endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return service + ":" + endpoint
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+params[name])
	}
	return service + ":" + endpoint + ":" + strings.Join(pairs, "&")
}
