package dto

import (
	"time"

	"tutorsite/internal/entity/common"
)

// UserSummary is a lightweight user description returned to clients.
// It never carries the password hash.
type UserSummary struct {
	ID        uint          `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Role      common.Role   `json:"role"`
	Status    common.Status `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// UserCreateRequest is the payload for creating a user from the admin area.
type UserCreateRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Role     *common.Role   `json:"role"`
	Status   *common.Status `json:"status"`
}

// UserUpdateRequest is the payload for updating a user.
type UserUpdateRequest struct {
	Name     *string        `json:"name,omitempty"`
	Role     *common.Role   `json:"role,omitempty"`
	Status   *common.Status `json:"status,omitempty"`
	Password *string        `json:"password,omitempty"`
}

// UserListResponse is the response for listing users.
type UserListResponse struct {
	Users []UserSummary `json:"users"`
}

// UserDetailResponse wraps a single user.
type UserDetailResponse struct {
	User UserSummary `json:"user"`
}

// DashboardStats aggregates account counters for the admin dashboard.
type DashboardStats struct {
	TotalUsers    int64 `json:"total_users"`
	ActiveUsers   int64 `json:"active_users"`
	GuestUsers    int64 `json:"guest_users"`
	NewUsersToday int64 `json:"new_users_today"`
}

// DashboardResponse is the admin dashboard payload.
type DashboardResponse struct {
	Users []UserSummary  `json:"users"`
	Stats DashboardStats `json:"stats"`
}
