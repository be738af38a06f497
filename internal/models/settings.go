package models

import "time"

// SystemSetting is a key/value row for runtime configuration: rate limits,
// message header/footer, daily counters, group lists.
type SystemSetting struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Key       string    `gorm:"column:key;size:100;uniqueIndex;not null" json:"key"`
	Value     string    `gorm:"column:value;type:text" json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}
