package models

// UserRole represents the caller roles recognised by the API.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleManager    UserRole = "MANAGER"
	RoleTeacher    UserRole = "TEACHER"
	RoleStaff      UserRole = "STAFF"
)

// SeesAllRecords reports whether the role may read every consultation rather than only its own.
func (r UserRole) SeesAllRecords() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleManager:
		return true
	default:
		return false
	}
}
