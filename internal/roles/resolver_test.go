package roles

import (
	"testing"
	"time"
)

func assignment(role Role, active bool) Assignment {
	return Assignment{
		Role:       role,
		AssignedBy: "user_admin",
		AssignedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Active:     active,
	}
}

func TestResolveActiveAssignmentWins(t *testing.T) {
	meta := Metadata{Orgs: map[string]Assignment{"org_1": assignment(RoleWorshipLeader, true)}}
	if got := Resolve("org:member", meta, "org_1"); got != RoleWorshipLeader {
		t.Fatalf("expected worship_leader, got %s", got)
	}
}

func TestResolveRevocationOverridesNativeRole(t *testing.T) {
	meta := Metadata{Orgs: map[string]Assignment{"org_1": assignment(RolePastor, false)}}
	// Even if the provider still reports an elevated native role, an
	// explicit revocation forces the floor role.
	if got := Resolve("org:admin", meta, "org_1"); got != RoleMember {
		t.Fatalf("expected member after revocation, got %s", got)
	}
}

func TestResolveFallsBackToNativeRole(t *testing.T) {
	cases := map[string]Role{
		"org:admin":        RoleAdmin,
		"org:collaborator": RoleCollaborator,
		"org:member":       RoleMember,
		"something_else":   RoleMember,
		"":                 RoleMember,
	}
	for native, want := range cases {
		if got := Resolve(native, Metadata{}, "org_1"); got != want {
			t.Fatalf("Resolve(%q)=%s, want %s", native, got, want)
		}
	}
}

func TestResolveDefaultRoleAppliesLast(t *testing.T) {
	meta := Metadata{DefaultRole: RoleCollaborator}
	if got := Resolve("", meta, "org_1"); got != RoleCollaborator {
		t.Fatalf("expected default role, got %s", got)
	}
	// Native role outranks the metadata default.
	if got := Resolve("org:pastor", meta, "org_1"); got != RolePastor {
		t.Fatalf("expected pastor, got %s", got)
	}
}

func TestResolveOtherOrganizationEntryIgnored(t *testing.T) {
	meta := Metadata{Orgs: map[string]Assignment{"org_other": assignment(RoleAdmin, true)}}
	if got := Resolve("", meta, "org_1"); got != RoleMember {
		t.Fatalf("entry for another organization leaked: %s", got)
	}
}

func TestRoleFromMetadataIgnoresNativeRole(t *testing.T) {
	meta := Metadata{Orgs: map[string]Assignment{"org_1": assignment(RoleCollaborator, true)}}
	if got := RoleFromMetadata(meta, "org_1"); got != RoleCollaborator {
		t.Fatalf("expected collaborator, got %s", got)
	}
	if got := RoleFromMetadata(Metadata{}, "org_1"); got != RoleMember {
		t.Fatalf("expected member for empty metadata, got %s", got)
	}
	if got := RoleFromMetadata(Metadata{DefaultRole: RolePastor}, "org_1"); got != RolePastor {
		t.Fatalf("expected metadata default, got %s", got)
	}
	inactive := Metadata{Orgs: map[string]Assignment{"org_1": assignment(RoleAdmin, false)}}
	if got := RoleFromMetadata(inactive, "org_1"); got != RoleMember {
		t.Fatalf("inactive entry must resolve to member, got %s", got)
	}
}
