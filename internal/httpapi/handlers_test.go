package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cantio.org/internal/authz"
	"cantio.org/internal/identity"
	"cantio.org/internal/limits"
	"cantio.org/internal/roles"
)

type stubStore struct {
	usage    limits.Usage
	tier     limits.Tier
	meta     map[string]roles.Metadata
	saved    map[string]roles.Metadata
	usageErr error
	tierErr  error
	metaErr  error
	churches []string
}

func newStubStore() *stubStore {
	return &stubStore{
		tier:  limits.TierFree,
		meta:  make(map[string]roles.Metadata),
		saved: make(map[string]roles.Metadata),
	}
}

func (s *stubStore) UsageStats(ctx context.Context, orgID string) (limits.Usage, error) {
	return s.usage, s.usageErr
}

func (s *stubStore) Tier(ctx context.Context, orgID string) (limits.Tier, error) {
	return s.tier, s.tierErr
}

func (s *stubStore) RoleMetadata(ctx context.Context, userID string) (roles.Metadata, error) {
	if s.metaErr != nil {
		return roles.Metadata{}, s.metaErr
	}
	return s.meta[userID], nil
}

func (s *stubStore) SaveRoleMetadata(ctx context.Context, userID string, meta roles.Metadata) error {
	s.saved[userID] = meta
	return nil
}

func (s *stubStore) CreateChurch(ctx context.Context, orgID, name string) (string, error) {
	s.churches = append(s.churches, name)
	return "ch_new", nil
}

func (s *stubStore) CreateMinistry(ctx context.Context, orgID, churchID, name string) (string, error) {
	return "min_new", nil
}

type stubProvider struct {
	sessions map[string]identity.Session
	err      error
}

func (p *stubProvider) Authenticate(ctx context.Context, token string) (identity.Session, error) {
	if p.err != nil {
		return identity.Session{}, p.err
	}
	session, ok := p.sessions[token]
	if !ok {
		return identity.Session{}, identity.ErrUnauthenticated
	}
	return session, nil
}

type stubAuth struct {
	result identity.LoginResult
	err    error
}

func (s stubAuth) Login(ctx context.Context, email, password string) (identity.LoginResult, error) {
	return s.result, s.err
}

func newTestAPI(store *stubStore, auth Authenticator) (*API, *stubProvider) {
	provider := &stubProvider{sessions: map[string]identity.Session{
		"tok-admin":  {UserID: "user_admin", OrganizationID: "org_1", NativeRole: "org:admin"},
		"tok-pastor": {UserID: "user_pastor", OrganizationID: "org_1", NativeRole: "org:pastor"},
		"tok-collab": {UserID: "user_collab", OrganizationID: "org_1", NativeRole: "org:collaborator"},
		"tok-member": {UserID: "user_member", OrganizationID: "org_1", NativeRole: "org:member"},
		"tok-noorg":  {UserID: "user_lost", NativeRole: "org:admin"},
	}}
	api := New(Config{
		Version:  "test",
		Store:    store,
		Auth:     auth,
		Provider: provider,
		Gate:     authz.NewGate(store),
	})
	return api, provider
}

func doRequest(t *testing.T, api *API, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	api, _ := newTestAPI(newStubStore(), stubAuth{})
	rec := doRequest(t, api, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status %d", rec.Code)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if body["service"] != "cantio-api" {
		t.Fatalf("unexpected service name: %v", body)
	}
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	api, _ := newTestAPI(newStubStore(), stubAuth{})
	rec := doRequest(t, api, http.MethodGet, "/v1/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestProtectedRouteProviderOutage(t *testing.T) {
	api, provider := newTestAPI(newStubStore(), stubAuth{})
	provider.err = identity.ErrProviderUnavailable
	rec := doRequest(t, api, http.MethodGet, "/v1/me", "tok-pastor", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestMeResolvesNativeRole(t *testing.T) {
	api, _ := newTestAPI(newStubStore(), stubAuth{})
	rec := doRequest(t, api, http.MethodGet, "/v1/me", "tok-pastor", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me status %d: %s", rec.Code, rec.Body.String())
	}
	var body meResponse
	decodeBody(t, rec, &body)
	if body.Role != roles.RolePastor {
		t.Fatalf("expected pastor, got %s", body.Role)
	}
	if len(body.Permissions) == 0 {
		t.Fatalf("expected non-empty permission set")
	}
}

func TestMeHonorsCustomAssignment(t *testing.T) {
	store := newStubStore()
	store.meta["user_member"] = roles.Metadata{}.Merge("org_1",
		roles.NewAssignment(roles.RoleWorshipLeader, "user_admin", 0))
	api, _ := newTestAPI(store, stubAuth{})

	rec := doRequest(t, api, http.MethodGet, "/v1/me", "tok-member", "")
	var body meResponse
	decodeBody(t, rec, &body)
	if body.Role != roles.RoleWorshipLeader {
		t.Fatalf("expected worship_leader from custom assignment, got %s", body.Role)
	}
}

func TestOrganizationMismatchDenied(t *testing.T) {
	api, _ := newTestAPI(newStubStore(), stubAuth{})
	rec := doRequest(t, api, http.MethodGet, "/v1/organizations/org_other/usage", "tok-pastor", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cross-organization access, got %d", rec.Code)
	}
}
