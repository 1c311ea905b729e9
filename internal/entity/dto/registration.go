package dto

import "time"

// Registration is the DTO representation of a tutoring sign-up.
type Registration struct {
	ID              uint      `json:"id"`
	StudentName     string    `json:"student_name"`
	ParentName      string    `json:"parent_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	SelectedProgram string    `json:"selected_program"`
	Grade           string    `json:"grade"`
	SchoolName      string    `json:"school_name"`
	Address         string    `json:"address"`
	District        string    `json:"district"`
	City            string    `json:"city"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RegistrationCreateRequest is the public sign-up form payload.
type RegistrationCreateRequest struct {
	StudentName     string `json:"student_name"`
	ParentName      string `json:"parent_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	SelectedProgram string `json:"selected_program"`
	Grade           string `json:"grade"`
	SchoolName      string `json:"school_name"`
	Address         string `json:"address"`
	District        string `json:"district"`
	City            string `json:"city"`
}

// RegistrationUpdateRequest is the payload for editing a sign-up.
type RegistrationUpdateRequest struct {
	StudentName     *string `json:"student_name,omitempty"`
	ParentName      *string `json:"parent_name,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	SelectedProgram *string `json:"selected_program,omitempty"`
	Grade           *string `json:"grade,omitempty"`
	SchoolName      *string `json:"school_name,omitempty"`
	Address         *string `json:"address,omitempty"`
	District        *string `json:"district,omitempty"`
	City            *string `json:"city,omitempty"`
}

// RegistrationListResponse is the response for listing sign-ups.
type RegistrationListResponse struct {
	Registrations []Registration `json:"registrations"`
}

// RegistrationDetailResponse wraps a single sign-up.
type RegistrationDetailResponse struct {
	Registration Registration `json:"registration"`
}

// RegistrationExportResponse describes a stored export snapshot.
type RegistrationExportResponse struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
	URL   string `json:"url,omitempty"`
}
