package common

import "fmt"

// Role 用户角色，以整数持久化。
type Role int

const (
	RoleAdmin    Role = 0
	RoleStandard Role = 1
	RoleGuest    Role = 2
)

// DefaultRole is assigned when a registration does not name a role.
const DefaultRole = RoleStandard

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStandard, RoleGuest:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleStandard:
		return "user"
	case RoleGuest:
		return "guest"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Status 账户状态。
type Status int

const (
	StatusInactive Status = 0
	StatusActive   Status = 1
)

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	return s == StatusInactive || s == StatusActive
}

func (s Status) String() string {
	switch s {
	case StatusInactive:
		return "inactive"
	case StatusActive:
		return "active"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}
