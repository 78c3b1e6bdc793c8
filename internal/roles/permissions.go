package roles

// Permission is a named boolean capability checked against a role.
type Permission string

const (
	PermViewChurches       Permission = "canViewChurches"
	PermViewMinistries     Permission = "canViewMinistries"
	PermManageChurches     Permission = "canManageChurches"
	PermCreateChurch       Permission = "canCreateChurch"
	PermManageChurch       Permission = "canManageChurch"
	PermDeleteChurch       Permission = "canDeleteChurch"
	PermManageMinistries   Permission = "canManageMinistries"
	PermCreateMinistry     Permission = "canCreateMinistry"
	PermManageMinistry     Permission = "canManageMinistry"
	PermDeleteMinistry     Permission = "canDeleteMinistry"
	PermCreateHymn         Permission = "canCreateHymn"
	PermEditHymn           Permission = "canEditHymn"
	PermApproveHymn        Permission = "canApproveHymn"
	PermDeleteHymn         Permission = "canDeleteHymn"
	PermCreateProgram      Permission = "canCreateProgram"
	PermEditProgram        Permission = "canEditProgram"
	PermApproveProgram     Permission = "canApproveProgram"
	PermDeleteProgram      Permission = "canDeleteProgram"
	PermCreateEvent        Permission = "canCreateEvent"
	PermEditEvent          Permission = "canEditEvent"
	PermDeleteEvent        Permission = "canDeleteEvent"
	PermInviteUsers        Permission = "canInviteUsers"
	PermViewAllFeedback    Permission = "canViewAllFeedback"
	PermResolveFeedback    Permission = "canResolveFeedback"
	PermAssignRoles        Permission = "canAssignRoles"
	PermRemoveUsers        Permission = "canRemoveUsers"
	PermViewUsageStats     Permission = "canViewUsageStats"
	PermManageSubscription Permission = "canManageSubscription"
)

// Role-set shorthands for the matrix. Each permission carries an explicit
// admitted-role set; the matrix is NOT derivable from a level cutoff alone
// (ministry deletion needs pastor+, ministry creation admits worship_leader).
var (
	everyone      = []Role{RoleAdmin, RolePastor, RoleWorshipLeader, RoleCollaborator, RoleMember}
	collaborators = []Role{RoleAdmin, RolePastor, RoleWorshipLeader, RoleCollaborator}
	leaders       = []Role{RoleAdmin, RolePastor, RoleWorshipLeader}
	pastors       = []Role{RoleAdmin, RolePastor}
	admins        = []Role{RoleAdmin}
)

var permissionMatrix = map[Permission][]Role{
	PermViewChurches:   everyone,
	PermViewMinistries: everyone,

	PermManageChurches: pastors,
	PermCreateChurch:   pastors,
	PermManageChurch:   pastors,
	PermDeleteChurch:   admins,

	PermManageMinistries: leaders,
	PermCreateMinistry:   leaders,
	PermManageMinistry:   leaders,
	PermDeleteMinistry:   pastors,

	PermCreateHymn:    collaborators,
	PermEditHymn:      collaborators,
	PermCreateProgram: collaborators,
	PermEditProgram:   collaborators,
	PermCreateEvent:   collaborators,
	PermEditEvent:     collaborators,

	PermApproveHymn:     leaders,
	PermDeleteHymn:      leaders,
	PermApproveProgram:  leaders,
	PermDeleteProgram:   leaders,
	PermDeleteEvent:     leaders,
	PermInviteUsers:     leaders,
	PermViewAllFeedback: leaders,
	PermResolveFeedback: leaders,

	PermAssignRoles:    pastors,
	PermRemoveUsers:    pastors,
	PermViewUsageStats: pastors,

	PermManageSubscription: admins,
}

// Can reports whether role is admitted for perm. Unknown permissions admit
// no role.
func Can(role Role, perm Permission) bool {
	for _, r := range permissionMatrix[perm] {
		if r == role {
			return true
		}
	}
	return false
}

// KnownPermission reports whether perm exists in the matrix.
func KnownPermission(perm Permission) bool {
	_, ok := permissionMatrix[perm]
	return ok
}

// PermissionsFor returns every permission admitted for role. Order is not
// defined.
func PermissionsFor(role Role) []Permission {
	out := make([]Permission, 0, len(permissionMatrix))
	for perm := range permissionMatrix {
		if Can(role, perm) {
			out = append(out, perm)
		}
	}
	return out
}
