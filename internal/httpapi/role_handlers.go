package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"cantio.org/internal/audit"
	"cantio.org/internal/authz"
	"cantio.org/internal/identity"
	"cantio.org/internal/roles"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	result, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, r, http.StatusServiceUnavailable, "identity provider unavailable")
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"user_id":         result.Session.UserID,
		"organization_id": result.Session.OrganizationID,
		"expires_at":      result.ExpiresAt.Format(time.RFC3339),
	})
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

type meResponse struct {
	UserID         string             `json:"user_id"`
	OrganizationID string             `json:"organization_id"`
	Role           roles.Role         `json:"role"`
	Permissions    []roles.Permission `json:"permissions"`
}

// handleMe reports the caller's effective role and permission set for their
// organization.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	session, ok := identity.SessionFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, string(authz.ReasonUnauthenticated))
		return
	}
	role := a.gate.EffectiveRole(r.Context(), session)
	writeJSON(w, http.StatusOK, meResponse{
		UserID:         session.UserID,
		OrganizationID: session.OrganizationID,
		Role:           role,
		Permissions:    roles.PermissionsFor(role),
	})
}

type availableRolesResponse struct {
	Role      roles.Role   `json:"role"`
	Available []roles.Role `json:"available"`
}

// handleAvailableRoles lists the roles the caller may grant: everything at or
// below their own level, member excluded.
func (a *API) handleAvailableRoles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	session, ok := identity.SessionFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, string(authz.ReasonUnauthenticated))
		return
	}
	decision, ok := a.requireDecision(w, r, session, authz.RequirePermission(roles.PermAssignRoles))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, availableRolesResponse{
		Role:      decision.Role,
		Available: roles.AvailableRoles(decision.Role),
	})
}

type assignRoleRequest struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	ChurchID int64  `json:"church_id"`
}

func (a *API) handleAssignRole(w http.ResponseWriter, r *http.Request, orgID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	session, ok := a.sessionForOrg(w, r, orgID)
	if !ok {
		return
	}
	decision, ok := a.requireDecision(w, r, session, authz.RequirePermission(roles.PermAssignRoles))
	if !ok {
		return
	}

	var req assignRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		writeError(w, r, http.StatusBadRequest, "user_id is required")
		return
	}
	granted := roles.Role(strings.TrimSpace(strings.ToLower(req.Role)))
	if !roles.Valid(granted) || granted == roles.RoleMember {
		writeError(w, r, http.StatusBadRequest, "role must be one of admin, pastor, worship_leader, collaborator")
		return
	}
	if !grantable(decision.Role, granted) {
		writeError(w, r, http.StatusForbidden, string(authz.ReasonInsufficientRole))
		return
	}

	meta, err := a.store.RoleMetadata(r.Context(), req.UserID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "role metadata lookup failed")
		return
	}
	assignment := roles.NewAssignment(granted, session.UserID, req.ChurchID)
	if err := a.store.SaveRoleMetadata(r.Context(), req.UserID, meta.Merge(orgID, assignment)); err != nil {
		writeError(w, r, http.StatusInternalServerError, "role assignment failed")
		return
	}

	_ = audit.LogEvent(r.Context(), "roles.assignment.created", map[string]any{
		"target_user_id": req.UserID,
		"role":           string(granted),
	})
	writeJSON(w, http.StatusCreated, assignment)
}

func (a *API) handleRevokeRole(w http.ResponseWriter, r *http.Request, orgID, userID string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	session, ok := a.sessionForOrg(w, r, orgID)
	if !ok {
		return
	}
	if _, ok := a.requireDecision(w, r, session, authz.RequirePermission(roles.PermAssignRoles)); !ok {
		return
	}

	meta, err := a.store.RoleMetadata(r.Context(), userID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "role metadata lookup failed")
		return
	}
	// Revoking a missing assignment is still a 204: the end state is the same.
	if err := a.store.SaveRoleMetadata(r.Context(), userID, meta.Revoke(orgID)); err != nil {
		writeError(w, r, http.StatusInternalServerError, "role revocation failed")
		return
	}

	_ = audit.LogEvent(r.Context(), "roles.assignment.revoked", map[string]any{
		"target_user_id": userID,
	})
	w.WriteHeader(http.StatusNoContent)
}

// grantable reports whether the assigner may grant the role.
func grantable(assigner, granted roles.Role) bool {
	for _, r := range roles.AvailableRoles(assigner) {
		if r == granted {
			return true
		}
	}
	return false
}
