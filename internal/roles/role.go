// Package roles defines the worship-platform role hierarchy, the permission
// matrix, and the pure functions that resolve a user's effective role for an
// organization from provider-native roles and per-organization assignments.
package roles

import "strings"

// Role is one of the five platform roles, totally ordered by Level.
type Role string

const (
	RoleAdmin         Role = "admin"
	RolePastor        Role = "pastor"
	RoleWorshipLeader Role = "worship_leader"
	RoleCollaborator  Role = "collaborator"
	RoleMember        Role = "member"
)

// roleLevels ranks roles. Levels strictly decrease in the declared order and
// no two roles share a level.
var roleLevels = map[Role]int{
	RoleAdmin:         100,
	RolePastor:        80,
	RoleWorshipLeader: 60,
	RoleCollaborator:  40,
	RoleMember:        20,
}

// byLevelDesc lists every role from highest to lowest.
var byLevelDesc = []Role{RoleAdmin, RolePastor, RoleWorshipLeader, RoleCollaborator, RoleMember}

// Level returns the hierarchy level of r. Unknown values rank as member, the
// floor role, so a corrupted string can never gain access.
func Level(r Role) int {
	if lvl, ok := roleLevels[r]; ok {
		return lvl
	}
	return roleLevels[RoleMember]
}

// Valid reports whether r is one of the five defined roles.
func Valid(r Role) bool {
	_, ok := roleLevels[r]
	return ok
}

// Parse converts an untrusted string into a Role. Unrecognized input maps to
// member; the permission matrix therefore never sees an open-ended string.
func Parse(s string) Role {
	r := Role(strings.TrimSpace(strings.ToLower(s)))
	if Valid(r) {
		return r
	}
	return RoleMember
}

// HasMinimum reports whether userRole satisfies requiredRole, i.e. whether
// its level is at least as high. The relation is reflexive and transitive.
func HasMinimum(userRole, requiredRole Role) bool {
	return Level(userRole) >= Level(requiredRole)
}

// nativeRoles maps the identity provider's coarse organization role strings
// onto the closed Role enum. This is the single translation boundary for
// provider role strings; anything unlisted resolves to member.
var nativeRoles = map[string]Role{
	"org:admin":          RoleAdmin,
	"org:pastor":         RolePastor,
	"org:worship_leader": RoleWorshipLeader,
	"org:collaborator":   RoleCollaborator,
}

// FromNativeRole translates a provider-native organization role string.
func FromNativeRole(native string) Role {
	if r, ok := nativeRoles[strings.TrimSpace(native)]; ok {
		return r
	}
	return RoleMember
}

// AvailableRoles returns the roles an assigner may grant, highest first.
// Member is never assignable and an assigner can only grant roles at or
// below their own level, which structurally rules out self-escalation.
func AvailableRoles(assigner Role) []Role {
	level := Level(assigner)
	out := make([]Role, 0, len(byLevelDesc)-1)
	for _, r := range byLevelDesc {
		if r == RoleMember {
			continue
		}
		if Level(r) <= level {
			out = append(out, r)
		}
	}
	return out
}
