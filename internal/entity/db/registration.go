package db

import "time"

// Registration 表示一次辅导课程报名（pendaftaran）。
type Registration struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	StudentName     string    `gorm:"column:student_name;type:varchar(255);not null" json:"student_name"`
	ParentName      string    `gorm:"column:parent_name;type:varchar(255);not null" json:"parent_name"`
	Email           string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone           string    `gorm:"column:phone;type:varchar(50);not null" json:"phone"`
	SelectedProgram string    `gorm:"column:selected_program;type:varchar(255);not null" json:"selected_program"`
	Grade           string    `gorm:"column:grade;type:varchar(50);not null" json:"grade"`
	SchoolName      string    `gorm:"column:school_name;type:varchar(255);not null" json:"school_name"`
	Address         string    `gorm:"column:address;type:text;not null" json:"address"`
	District        string    `gorm:"column:district;type:varchar(255);not null" json:"district"`
	City            string    `gorm:"column:city;type:varchar(255);not null" json:"city"`
}

// TableName 指定表名。
func (Registration) TableName() string {
	return "registrations"
}
