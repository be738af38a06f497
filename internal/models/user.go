package models

import (
	"time"
)

// UserRole represents the role of an admin-panel user
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleOperator   UserRole = "operator"
	RoleTechnician UserRole = "technician"
)

// User represents an admin-panel user
type User struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Username  string    `gorm:"column:username;size:100;uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"column:password;size:255;not null" json:"-"`
	FullName  string    `gorm:"column:full_name;size:200" json:"full_name"`
	Email     string    `gorm:"column:email;size:200" json:"email"`
	Phone     string    `gorm:"column:phone;size:30" json:"phone"`
	Role      UserRole  `gorm:"column:role;size:20;not null;default:'operator'" json:"role"`
	IsActive  bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
