package sql

import (
	"context"
	"fmt"

	"tutorsite/internal/entity/db"

	"gorm.io/gorm"
)

// CreateRegistration persists a new sign-up. A duplicate email surfaces as
// gorm.ErrDuplicatedKey.
func (r *GormRepository) CreateRegistration(ctx context.Context, registration *db.Registration) error {
	if !r.ready() {
		return errNotInitialised
	}
	if registration == nil {
		return fmt.Errorf("registration is nil")
	}
	return r.db.WithContext(ctx).Create(registration).Error
}

// GetRegistration loads a sign-up by ID.
func (r *GormRepository) GetRegistration(ctx context.Context, id uint) (*db.Registration, error) {
	if !r.ready() {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var registration db.Registration
	if err := r.db.WithContext(ctx).First(&registration, id).Error; err != nil {
		return nil, err
	}
	return &registration, nil
}

// UpdateRegistration applies a partial update.
func (r *GormRepository) UpdateRegistration(ctx context.Context, id uint, updates db.RegistrationUpdates) error {
	if !r.ready() {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid registration id")
	}
	if updates.IsEmpty() {
		return nil
	}
	return r.db.WithContext(ctx).Model(&db.Registration{}).Where("id = ?", id).Updates(updates.ToMap()).Error
}

// DeleteRegistration removes a sign-up by ID.
func (r *GormRepository) DeleteRegistration(ctx context.Context, id uint) error {
	if !r.ready() {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid registration id")
	}
	result := r.db.WithContext(ctx).Delete(&db.Registration{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListRegistrations returns every sign-up, newest first.
func (r *GormRepository) ListRegistrations(ctx context.Context) ([]db.Registration, error) {
	if !r.ready() {
		return nil, errNotInitialised
	}
	var items []db.Registration
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
