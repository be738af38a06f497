package models

import "time"

// NotificationLog records one delivery attempt, for auditing and the admin
// delivery-log view.
type NotificationLog struct {
	ID           uint       `gorm:"column:id;primaryKey" json:"id"`
	TemplateKey  string     `gorm:"column:template_key;size:50;index" json:"template_key"`
	Recipient    string     `gorm:"column:recipient;size:30;index" json:"recipient"`
	Message      string     `gorm:"column:message;type:text" json:"message"`
	Status       string     `gorm:"column:status;size:20;not null;index" json:"status"` // sent, failed, skipped
	ErrorMessage string     `gorm:"column:error_message;type:text" json:"error_message"`
	CustomerID   *uint      `gorm:"column:customer_id;index" json:"customer_id"`
	SentAt       *time.Time `gorm:"column:sent_at" json:"sent_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;index" json:"created_at"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}
