package db

import "tutorsite/internal/entity/common"

// UserUpdates 用户更新字段
type UserUpdates struct {
	Name         *string
	Role         *common.Role
	Status       *common.Status
	PasswordHash *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Role != nil {
		updates["role"] = *u.Role
	}
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	if u.PasswordHash != nil {
		updates["password_hash"] = *u.PasswordHash
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// RegistrationUpdates 报名记录更新字段
type RegistrationUpdates struct {
	StudentName     *string
	ParentName      *string
	Email           *string
	Phone           *string
	SelectedProgram *string
	Grade           *string
	SchoolName      *string
	Address         *string
	District        *string
	City            *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u RegistrationUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	set := func(column string, value *string) {
		if value != nil {
			updates[column] = *value
		}
	}
	set("student_name", u.StudentName)
	set("parent_name", u.ParentName)
	set("email", u.Email)
	set("phone", u.Phone)
	set("selected_program", u.SelectedProgram)
	set("grade", u.Grade)
	set("school_name", u.SchoolName)
	set("address", u.Address)
	set("district", u.District)
	set("city", u.City)
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u RegistrationUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
