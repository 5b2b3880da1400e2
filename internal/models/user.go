package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RolePrincipal  UserRole = "PRINCIPAL"
	RoleTeacher    UserRole = "TEACHER"
	RoleStudent    UserRole = "STUDENT"
	RoleParent     UserRole = "PARENT"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RolePrincipal, RoleTeacher, RoleStudent, RoleParent:
		return true
	default:
		return false
	}
}

// Staff reports whether the role manages school-wide records.
func (r UserRole) Staff() bool {
	return r == RoleSuperAdmin || r == RolePrincipal || r == RoleTeacher
}
