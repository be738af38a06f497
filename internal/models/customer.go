package models

import (
	"time"

	"gorm.io/gorm"
)

// CustomerStatus represents the provisioning state of a customer
type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "active"
	CustomerStatusSuspended CustomerStatus = "suspended"
	CustomerStatusInactive  CustomerStatus = "inactive"
)

// Package represents an internet service package
type Package struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;size:100;not null" json:"name"`
	Speed       string    `gorm:"column:speed;size:50" json:"speed"`
	Price       float64   `gorm:"column:price;type:decimal(15,2);not null" json:"price"`
	PPPProfile  string    `gorm:"column:ppp_profile;size:100" json:"ppp_profile"`
	Description string    `gorm:"column:description;size:500" json:"description"`
	IsActive    bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Package) TableName() string {
	return "packages"
}

// Customer represents an ISP customer
type Customer struct {
	ID        uint           `gorm:"column:id;primaryKey" json:"id"`
	Username  string         `gorm:"column:username;size:100;uniqueIndex;not null" json:"username"`
	Name      string         `gorm:"column:name;size:200;not null" json:"name"`
	Phone     string         `gorm:"column:phone;size:30;index" json:"phone"`
	Email     string         `gorm:"column:email;size:200" json:"email"`
	Address   string         `gorm:"column:address;size:500" json:"address"`
	PackageID uint           `gorm:"column:package_id;index" json:"package_id"`
	Package   *Package       `gorm:"foreignKey:PackageID" json:"package,omitempty"`
	Status    CustomerStatus `gorm:"column:status;size:20;not null;default:'active';index" json:"status"`
	JoinDate  time.Time      `gorm:"column:join_date" json:"join_date"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

func (Customer) TableName() string {
	return "customers"
}
