package sql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tutorsite/internal/entity/common"
	"tutorsite/internal/entity/db"

	"gorm.io/gorm"
)

// CreateUser persists a new user record. A duplicate email surfaces as
// gorm.ErrDuplicatedKey.
func (r *GormRepository) CreateUser(ctx context.Context, user *db.User) error {
	if !r.ready() {
		return errNotInitialised
	}
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateUser updates an existing user entry.
func (r *GormRepository) UpdateUser(ctx context.Context, id uint, updates db.UserUpdates) error {
	if !r.ready() {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid user")
	}
	if updates.IsEmpty() {
		return nil
	}
	return r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Updates(updates.ToMap()).Error
}

// GetUserByEmail loads a user by email. Emails are stored lower-cased.
func (r *GormRepository) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	if !r.ready() {
		return nil, errNotInitialised
	}
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil, fmt.Errorf("email is empty")
	}

	var user db.User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(trimmed)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID loads a user by ID.
func (r *GormRepository) GetUserByID(ctx context.Context, id uint) (*db.User, error) {
	if !r.ready() {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users, newest first.
func (r *GormRepository) ListUsers(ctx context.Context) ([]db.User, error) {
	if !r.ready() {
		return nil, errNotInitialised
	}
	var users []db.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes a user by ID.
func (r *GormRepository) DeleteUser(ctx context.Context, id uint) error {
	if !r.ready() {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid user id")
	}
	result := r.db.WithContext(ctx).Delete(&db.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountUsers returns total user count.
func (r *GormRepository) CountUsers(ctx context.Context) (int64, error) {
	if !r.ready() {
		return 0, errNotInitialised
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UserStats returns dashboard counters. NewSince counts users created at or after since.
func (r *GormRepository) UserStats(ctx context.Context, since time.Time) (db.UserStats, error) {
	if !r.ready() {
		return db.UserStats{}, errNotInitialised
	}
	var stats db.UserStats
	base := r.db.WithContext(ctx).Model(&db.User{})

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return db.UserStats{}, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", int(common.StatusActive)).Count(&stats.Active).Error; err != nil {
		return db.UserStats{}, err
	}
	if err := base.Session(&gorm.Session{}).Where("role = ?", int(common.RoleGuest)).Count(&stats.Guests).Error; err != nil {
		return db.UserStats{}, err
	}
	if err := base.Session(&gorm.Session{}).Where("created_at >= ?", since).Count(&stats.NewSince).Error; err != nil {
		return db.UserStats{}, err
	}
	return stats, nil
}
