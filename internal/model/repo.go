package model

import (
	"context"
	"time"

	"tutorsite/internal/entity/db"
)

// Repository 定义数据库操作接口
type Repository interface {
	// 用户管理
	CreateUser(ctx context.Context, user *db.User) error
	UpdateUser(ctx context.Context, id uint, updates db.UserUpdates) error
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUserByID(ctx context.Context, id uint) (*db.User, error)
	ListUsers(ctx context.Context) ([]db.User, error)
	DeleteUser(ctx context.Context, id uint) error
	CountUsers(ctx context.Context) (int64, error)
	UserStats(ctx context.Context, since time.Time) (db.UserStats, error)

	// 报名记录
	CreateRegistration(ctx context.Context, registration *db.Registration) error
	GetRegistration(ctx context.Context, id uint) (*db.Registration, error)
	UpdateRegistration(ctx context.Context, id uint, updates db.RegistrationUpdates) error
	DeleteRegistration(ctx context.Context, id uint) error
	ListRegistrations(ctx context.Context) ([]db.Registration, error)
}
