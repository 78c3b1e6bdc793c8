package roles

// Resolve computes the effective role of a user within an organization.
//
// Precedence is strict:
//  1. an active custom assignment for the organization wins;
//  2. an inactive assignment forces member; an explicit revocation always
//     overrides whatever the identity provider still reports natively;
//  3. with no assignment at all, the provider-native role string is mapped
//     through FromNativeRole;
//  4. failing that, the metadata default role applies, and finally member.
func Resolve(nativeRole string, meta Metadata, orgID string) Role {
	if entry, ok := meta.Assignment(orgID); ok {
		if entry.Active && Valid(entry.Role) && entry.Role != RoleMember {
			return entry.Role
		}
		return RoleMember
	}
	if native := FromNativeRole(nativeRole); native != RoleMember {
		return native
	}
	if Valid(meta.DefaultRole) && meta.DefaultRole != RoleMember {
		return meta.DefaultRole
	}
	return RoleMember
}

// RoleFromMetadata is the narrow metadata-only lookup: it never consults the
// provider-native role. Missing entry falls back to the metadata default
// role (or member); an inactive entry is member.
func RoleFromMetadata(meta Metadata, orgID string) Role {
	entry, ok := meta.Assignment(orgID)
	if !ok {
		if Valid(meta.DefaultRole) && meta.DefaultRole != RoleMember {
			return meta.DefaultRole
		}
		return RoleMember
	}
	if !entry.Active {
		return RoleMember
	}
	if Valid(entry.Role) && entry.Role != RoleMember {
		return entry.Role
	}
	return RoleMember
}
