package models

import (
	"time"

	"gorm.io/gorm"
)

// InvoiceStatus represents the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "unpaid"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusVoid    InvoiceStatus = "void"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Invoice represents a monthly customer invoice
type Invoice struct {
	ID            uint           `gorm:"column:id;primaryKey" json:"id"`
	InvoiceNumber string         `gorm:"column:invoice_number;size:50;uniqueIndex;not null" json:"invoice_number"`
	CustomerID    uint           `gorm:"column:customer_id;not null;index" json:"customer_id"`
	Customer      *Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	PackageID     uint           `gorm:"column:package_id;index" json:"package_id"`
	Amount        float64        `gorm:"column:amount;type:decimal(15,2);not null" json:"amount"`
	Status        InvoiceStatus  `gorm:"column:status;size:20;not null;default:'unpaid';index" json:"status"`
	DueDate       time.Time      `gorm:"column:due_date;index" json:"due_date"`
	PaidAt        *time.Time     `gorm:"column:paid_at" json:"paid_at"`
	Notes         string         `gorm:"column:notes;size:500" json:"notes"`
	CreatedAt     time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// Payment represents a recorded payment against an invoice
type Payment struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	InvoiceID uint      `gorm:"column:invoice_id;not null;index" json:"invoice_id"`
	Invoice   *Invoice  `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
	Amount    float64   `gorm:"column:amount;type:decimal(15,2);not null" json:"amount"`
	Method    string    `gorm:"column:method;size:50" json:"method"`
	Reference string    `gorm:"column:reference;size:100" json:"reference"`
	PaidAt    time.Time `gorm:"column:paid_at" json:"paid_at"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// JobStatus represents the lifecycle state of an installation job
type JobStatus string

const (
	JobStatusScheduled JobStatus = "scheduled"
	JobStatusAssigned  JobStatus = "assigned"
	JobStatusDone      JobStatus = "done"
	JobStatusCancelled JobStatus = "cancelled"
)

// InstallationJob represents a field-technician installation visit
type InstallationJob struct {
	ID          uint       `gorm:"column:id;primaryKey" json:"id"`
	JobCode     string     `gorm:"column:job_code;size:50;uniqueIndex;not null" json:"job_code"`
	CustomerID  uint       `gorm:"column:customer_id;not null;index" json:"customer_id"`
	Customer    *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Technician  string     `gorm:"column:technician;size:200" json:"technician"`
	ScheduledAt time.Time  `gorm:"column:scheduled_at" json:"scheduled_at"`
	Status      JobStatus  `gorm:"column:status;size:20;not null;default:'scheduled';index" json:"status"`
	Notes       string     `gorm:"column:notes;size:500" json:"notes"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (InstallationJob) TableName() string {
	return "installation_jobs"
}
