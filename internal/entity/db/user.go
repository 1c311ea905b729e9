package db

import (
	"time"

	"tutorsite/internal/entity/common"
)

// User 表示持久化的用户账户。
//
// Role and Status have no gorm default tag: zero is a valid value for both
// (Admin, Inactive) and must be written as-is.
type User struct {
	ID           uint          `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Name         string        `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Email        string        `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string        `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Role         common.Role   `gorm:"column:role;type:smallint;index;not null" json:"role"`
	Status       common.Status `gorm:"column:status;type:smallint;not null" json:"status"`
}

// TableName 指定表名。
func (User) TableName() string {
	return "users"
}

// IsActive reports whether the account may sign in.
func (u *User) IsActive() bool {
	return u != nil && u.Status == common.StatusActive
}

// IsAdmin reports whether the account has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == common.RoleAdmin
}

// UserStats 用户统计，NewSince 为指定时间之后注册的用户数。
type UserStats struct {
	Total    int64
	Active   int64
	Guests   int64
	NewSince int64
}
