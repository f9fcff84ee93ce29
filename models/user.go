package models

import (
	"gorm.io/gorm"
)

const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is a staff account for the admin dashboard and API.
type User struct {
	gorm.Model

	FullName string `json:"fullName" gorm:"column:full_name;type:varchar(128)"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(191)"`
	Password string `json:"-" gorm:"type:varchar(191)"`
	Role     string `json:"role" gorm:"type:varchar(32);default:staff"`
	IsActive bool   `json:"isActive" gorm:"column:is_active;default:true"`
}
