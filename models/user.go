package models

import "time"

// Roles understood by the authorization layer. A nil role is an ordinary user.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account
type User struct {
	ID           uint      `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" db:"username" gorm:"type:varchar(80);not null"`
	Email        string    `json:"email" db:"email" gorm:"type:varchar(120);not null;uniqueIndex:idx_users_email"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"type:varchar(255);not null"`
	Role         *string   `json:"role,omitempty" db:"role" gorm:"type:varchar(20)"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role != nil && *u.Role == RoleAdmin
}

// RoleName returns the role, or RoleUser when unset.
func (u *User) RoleName() string {
	if u == nil || u.Role == nil || *u.Role == "" {
		return RoleUser
	}
	return *u.Role
}
