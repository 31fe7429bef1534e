// Package rbac holds the role/permission model and the request
// authorization engine built on top of it.
package rbac

// Permission is an atomic capability identifier, e.g. "student:write".
type Permission string

// Capabilities known to the system.
const (
	PermStudentRead  Permission = "student:read"
	PermStudentWrite Permission = "student:write"
	PermCourseRead   Permission = "course:read"
	PermCourseWrite  Permission = "course:write"
)

// Role is a named bundle of permissions. The set of roles is closed:
// roles are defined here, not at runtime.
type Role string

// Roles known to the system.
const (
	RoleStudent      Role = "STUDENT"
	RoleAdmin        Role = "ADMIN"
	RoleAdminTrainee Role = "ADMINTRAINEE"
)

// Subject is the authenticated actor as seen by the engine. A nil
// Subject means the request is anonymous.
type Subject interface {
	HasAuthority(name string) bool
}
