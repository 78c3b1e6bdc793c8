package httpapi

import (
	"net/http"
	"testing"
	"time"

	"cantio.org/internal/identity"
	"cantio.org/internal/roles"
)

func TestLogin(t *testing.T) {
	auth := stubAuth{result: identity.LoginResult{
		Token:     "tok-issued",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		Session:   identity.Session{UserID: "user_1", OrganizationID: "org_1"},
	}}
	api, _ := newTestAPI(newStubStore(), auth)

	rec := doRequest(t, api, http.MethodPost, "/v1/auth/login", "",
		`{"email":"a@b.c","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", rec.Code, rec.Body.String())
	}
	var body loginResponse
	decodeBody(t, rec, &body)
	if body.Token != "tok-issued" {
		t.Fatalf("unexpected token: %q", body.Token)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	api, _ := newTestAPI(newStubStore(), stubAuth{err: identity.ErrInvalidCredentials})
	rec := doRequest(t, api, http.MethodPost, "/v1/auth/login", "",
		`{"email":"a@b.c","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginProviderOutage(t *testing.T) {
	api, _ := newTestAPI(newStubStore(), stubAuth{err: identity.ErrProviderUnavailable})
	rec := doRequest(t, api, http.MethodPost, "/v1/auth/login", "",
		`{"email":"a@b.c","password":"secret"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestAvailableRolesForPastor(t *testing.T) {
	api, _ := newTestAPI(newStubStore(), stubAuth{})
	rec := doRequest(t, api, http.MethodGet, "/v1/roles/available", "tok-pastor", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("available roles status %d: %s", rec.Code, rec.Body.String())
	}
	var body availableRolesResponse
	decodeBody(t, rec, &body)
	want := []roles.Role{roles.RolePastor, roles.RoleWorshipLeader, roles.RoleCollaborator}
	if len(body.Available) != len(want) {
		t.Fatalf("unexpected available roles: %v", body.Available)
	}
	for i, r := range want {
		if body.Available[i] != r {
			t.Fatalf("available[%d] = %s, want %s", i, body.Available[i], r)
		}
	}
}

func TestAvailableRolesDeniedForCollaborator(t *testing.T) {
	api, _ := newTestAPI(newStubStore(), stubAuth{})
	rec := doRequest(t, api, http.MethodGet, "/v1/roles/available", "tok-collab", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAssignRole(t *testing.T) {
	store := newStubStore()
	api, _ := newTestAPI(store, stubAuth{})

	rec := doRequest(t, api, http.MethodPost, "/v1/organizations/org_1/roles", "tok-pastor",
		`{"user_id":"user_member","role":"worship_leader"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("assign status %d: %s", rec.Code, rec.Body.String())
	}
	saved, ok := store.saved["user_member"]
	if !ok {
		t.Fatalf("metadata was not saved")
	}
	entry, ok := saved.Assignment("org_1")
	if !ok || entry.Role != roles.RoleWorshipLeader || !entry.Active {
		t.Fatalf("unexpected saved assignment: %+v", saved)
	}
	if entry.AssignedBy != "user_pastor" {
		t.Fatalf("assigned_by = %q", entry.AssignedBy)
	}
}

func TestAssignRoleAboveAssignerLevel(t *testing.T) {
	store := newStubStore()
	api, _ := newTestAPI(store, stubAuth{})

	rec := doRequest(t, api, http.MethodPost, "/v1/organizations/org_1/roles", "tok-pastor",
		`{"user_id":"user_member","role":"admin"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for escalation attempt, got %d", rec.Code)
	}
	if _, ok := store.saved["user_member"]; ok {
		t.Fatalf("metadata must not be saved on denial")
	}
}

func TestAssignRoleRejectsMember(t *testing.T) {
	api, _ := newTestAPI(newStubStore(), stubAuth{})
	rec := doRequest(t, api, http.MethodPost, "/v1/organizations/org_1/roles", "tok-pastor",
		`{"user_id":"user_member","role":"member"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAssignRoleDeniedWithoutPermission(t *testing.T) {
	api, _ := newTestAPI(newStubStore(), stubAuth{})
	rec := doRequest(t, api, http.MethodPost, "/v1/organizations/org_1/roles", "tok-collab",
		`{"user_id":"user_member","role":"collaborator"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRevokeRole(t *testing.T) {
	store := newStubStore()
	store.meta["user_member"] = roles.Metadata{}.Merge("org_1",
		roles.NewAssignment(roles.RoleCollaborator, "user_admin", 0))
	api, _ := newTestAPI(store, stubAuth{})

	rec := doRequest(t, api, http.MethodDelete, "/v1/organizations/org_1/roles/user_member", "tok-admin", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("revoke status %d: %s", rec.Code, rec.Body.String())
	}
	saved := store.saved["user_member"]
	entry, ok := saved.Assignment("org_1")
	if !ok || entry.Active {
		t.Fatalf("assignment should be retained but inactive: %+v", saved)
	}
}

func TestRevokeMissingAssignmentIsIdempotent(t *testing.T) {
	store := newStubStore()
	api, _ := newTestAPI(store, stubAuth{})

	rec := doRequest(t, api, http.MethodDelete, "/v1/organizations/org_1/roles/user_unknown", "tok-admin", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for missing assignment, got %d", rec.Code)
	}
}
