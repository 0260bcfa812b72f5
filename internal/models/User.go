package models

import "gorm.io/gorm"

// Roles an operator account can have.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

type User struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Password string `json:"-"`
	Role     string `json:"role"` // "operator", "admin"
}
