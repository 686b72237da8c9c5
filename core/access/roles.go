package access

import "strings"

type Role string

// Roles
const (
	RoleNone   Role = ""
	RoleAdmin  Role = "admin"
	RoleGeral  Role = "geral"
	RoleEditor Role = "editor"
)

// rolePrefix namespaces the console roles among the identity provider's roles.
const rolePrefix = "go:"

var (
	AllRoles = []Role{RoleAdmin, RoleGeral, RoleEditor}

	rolePriorities = map[Role]int{
		RoleAdmin:  30,
		RoleGeral:  20,
		RoleEditor: 10,
	}
)

func RolePriority(role Role) int {
	return rolePriorities[role]
}

// ParseRole accepts "admin" as well as the provider's "go:admin", case-insensitively.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, rolePrefix)
	role := Role(s)
	if _, ok := rolePriorities[role]; !ok {
		return RoleNone, false
	}
	return role, true
}

// HighestRole returns the recognized role with the highest priority, RoleNone if there is none.
func HighestRole(roles []string) Role {
	best := RoleNone
	for _, s := range roles {
		if role, ok := ParseRole(s); ok && RolePriority(role) > RolePriority(best) {
			best = role
		}
	}
	return best
}
