package models

import "gorm.io/gorm"

// Roles recognised by the access layer. Staff and admins can manage orders;
// only admins can mutate the catalog.
const (
	RoleUser  = "user"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// User is the primary account model.
type User struct {
	gorm.Model
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // hashed, never serialised
	Role     string `gorm:"size:50;default:user" json:"role"`
}

// IsStaff reports whether the user may act on other users' orders.
func (u User) IsStaff() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}

// IsAdmin reports whether the user may mutate the catalog.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
