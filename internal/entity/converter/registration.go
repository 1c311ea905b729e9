package converter

import (
	"tutorsite/internal/entity/db"
	"tutorsite/internal/entity/dto"
)

// RegistrationToDTO converts a db.Registration to its DTO.
func RegistrationToDTO(r *db.Registration) dto.Registration {
	if r == nil {
		return dto.Registration{}
	}
	return dto.Registration{
		ID:              r.ID,
		StudentName:     r.StudentName,
		ParentName:      r.ParentName,
		Email:           r.Email,
		Phone:           r.Phone,
		SelectedProgram: r.SelectedProgram,
		Grade:           r.Grade,
		SchoolName:      r.SchoolName,
		Address:         r.Address,
		District:        r.District,
		City:            r.City,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// RegistrationsToDTOs converts a slice of db.Registration.
func RegistrationsToDTOs(items []db.Registration) []dto.Registration {
	out := make([]dto.Registration, len(items))
	for i := range items {
		out[i] = RegistrationToDTO(&items[i])
	}
	return out
}
