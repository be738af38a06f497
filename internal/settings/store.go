package settings

import (
	"strconv"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/netbilling/backend/internal/models"
)

// Store is the key/value settings contract the notification pipeline reads
// rate limits, branding text and counters from. Get must tolerate missing
// keys by returning the supplied default.
type Store interface {
	Get(key, defaultValue string) string
	Set(key, value string) error
	Delete(key string) error
	All() (map[string]string, error)
}

// GetInt reads a setting as an integer, falling back on parse failure.
func GetInt(s Store, key string, defaultValue int) int {
	v := s.Get(key, "")
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

// GetBool reads a setting as a boolean. "true" and "1" are true, everything
// else false.
func GetBool(s Store, key string, defaultValue bool) bool {
	v := s.Get(key, "")
	if v == "" {
		return defaultValue
	}
	return v == "true" || v == "1"
}

// DBStore persists settings as system_settings rows. Reads go to the
// database every time so bulk sends always see fresh rate-limit values.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Get(key, defaultValue string) string {
	var setting models.SystemSetting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return defaultValue
	}
	return setting.Value
}

func (s *DBStore) Set(key, value string) error {
	setting := models.SystemSetting{Key: key, Value: value}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}

func (s *DBStore) Delete(key string) error {
	return s.db.Where("key = ?", key).Delete(&models.SystemSetting{}).Error
}

func (s *DBStore) All() (map[string]string, error) {
	var rows []models.SystemSetting
	if err := s.db.Order("key").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[string]string, len(rows))
	for _, row := range rows {
		result[row.Key] = row.Value
	}
	return result, nil
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key, defaultValue string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return defaultValue
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) All() (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]string, len(s.values))
	for k, v := range s.values {
		result[k] = v
	}
	return result, nil
}
