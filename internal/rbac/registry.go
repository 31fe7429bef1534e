package rbac

import (
	"errors"
	"sort"
)

// ErrUnknownRole indicates a role outside the closed enumeration. With
// roles declared as constants this is unreachable from normal call
// sites, but the contract stays explicit.
var ErrUnknownRole = errors.New("rbac: unknown role")

// rolePermissions is the static grant table. Read-only after init; a
// role may legitimately own no permissions at all.
var rolePermissions = map[Role][]Permission{
	RoleStudent: {},
	RoleAdmin: {
		PermCourseRead,
		PermCourseWrite,
		PermStudentRead,
		PermStudentWrite,
	},
	RoleAdminTrainee: {
		PermCourseRead,
		PermStudentRead,
	},
}

// RoleMarker returns the synthesized role authority for a role.
func RoleMarker(role Role) string {
	return "ROLE_" + string(role)
}

// AuthoritiesFor computes the authority set granted by a role: every
// permission string plus the role marker. The result is sorted so two
// calls for the same role always compare equal.
func AuthoritiesFor(role Role) ([]string, error) {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil, ErrUnknownRole
	}
	authorities := make([]string, 0, len(perms)+1)
	for _, p := range perms {
		authorities = append(authorities, string(p))
	}
	authorities = append(authorities, RoleMarker(role))
	sort.Strings(authorities)
	return authorities, nil
}

// Roles lists the closed role enumeration in stable order.
func Roles() []Role {
	roles := make([]Role, 0, len(rolePermissions))
	for r := range rolePermissions {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}
