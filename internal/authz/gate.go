// Package authz glues identity, role resolution, and the permission matrix
// into per-request allow/deny verdicts with machine-readable deny reasons.
package authz

import (
	"context"
	"errors"
	"fmt"

	"cantio.org/internal/identity"
	"cantio.org/internal/obs"
	"cantio.org/internal/roles"
)

// Reason is a machine-readable deny reason code.
type Reason string

const (
	ReasonNone                   Reason = ""
	ReasonUnauthenticated        Reason = "unauthenticated"
	ReasonNoOrganization         Reason = "no_organization"
	ReasonInsufficientPermission Reason = "insufficient_permission"
	ReasonInsufficientRole       Reason = "insufficient_role"
	ReasonAuthProviderError      Reason = "auth_provider_error"
)

// Decision is the gate's verdict. Denials are normal values; only identity
// provider failures also yield an error.
type Decision struct {
	Allowed        bool
	Reason         Reason
	Role           roles.Role
	UserID         string
	OrganizationID string
}

// Requirement declares what an endpoint demands. With both permissions and a
// minimum role set, both must pass. RequireAll toggles AND/OR semantics
// across the permission list; the zero value of Requirement allows any
// authenticated member of an organization.
type Requirement struct {
	Permissions []roles.Permission
	MinimumRole roles.Role
	RequireAll  bool
}

// RequirePermission demands every listed permission.
func RequirePermission(perms ...roles.Permission) Requirement {
	return Requirement{Permissions: perms, RequireAll: true}
}

// RequireAnyPermission demands at least one of the listed permissions.
func RequireAnyPermission(perms ...roles.Permission) Requirement {
	return Requirement{Permissions: perms, RequireAll: false}
}

// RequireRole demands a minimum hierarchy role.
func RequireRole(min roles.Role) Requirement {
	return Requirement{MinimumRole: min, RequireAll: true}
}

// Gate resolves effective roles and evaluates requirements.
type Gate struct {
	metadata identity.MetadataStore
}

// NewGate constructs a Gate. metadata may be nil, in which case every user
// resolves from their provider-native role alone.
func NewGate(metadata identity.MetadataStore) *Gate {
	return &Gate{metadata: metadata}
}

// Authorize evaluates a requirement for an authenticated session.
//
// A failed metadata fetch degrades the user to member and proceeds: member
// holds the fewest permissions, so a lookup outage can only deny more, never
// grant more. The outage is therefore never surfaced as an error here.
func (g *Gate) Authorize(ctx context.Context, session identity.Session, req Requirement) Decision {
	if session.UserID == "" {
		return g.deny(ReasonUnauthenticated, session)
	}
	if session.OrganizationID == "" {
		return g.deny(ReasonNoOrganization, session)
	}

	meta := roles.Metadata{}
	if g.metadata != nil {
		fetched, err := g.metadata.RoleMetadata(ctx, session.UserID)
		if err == nil {
			meta = fetched
		}
	}
	role := roles.Resolve(session.NativeRole, meta, session.OrganizationID)

	decision := Decision{
		Allowed:        true,
		Role:           role,
		UserID:         session.UserID,
		OrganizationID: session.OrganizationID,
	}
	if len(req.Permissions) > 0 && !permitted(role, req) {
		decision.Allowed = false
		decision.Reason = ReasonInsufficientPermission
	}
	if decision.Allowed && req.MinimumRole != "" && !roles.HasMinimum(role, req.MinimumRole) {
		decision.Allowed = false
		decision.Reason = ReasonInsufficientRole
	}
	obs.ObserveAuthzDecision(decision.Allowed, string(decision.Reason))
	return decision
}

// AuthorizeToken authenticates a bearer token and then authorizes it.
// Provider failures (identity itself unverifiable) return a decision with
// ReasonAuthProviderError and a non-nil error; missing or invalid tokens are
// plain unauthenticated denials.
func (g *Gate) AuthorizeToken(ctx context.Context, provider identity.Provider, token string, req Requirement) (Decision, error) {
	if token == "" {
		return g.deny(ReasonUnauthenticated, identity.Session{}), nil
	}
	session, err := provider.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			return g.deny(ReasonUnauthenticated, identity.Session{}), nil
		}
		decision := g.deny(ReasonAuthProviderError, identity.Session{})
		return decision, fmt.Errorf("authz: authenticate: %w", err)
	}
	return g.Authorize(ctx, session, req), nil
}

// EffectiveRole resolves the session's role without evaluating a
// requirement, degrading to member on metadata errors like Authorize.
func (g *Gate) EffectiveRole(ctx context.Context, session identity.Session) roles.Role {
	meta := roles.Metadata{}
	if g.metadata != nil {
		fetched, err := g.metadata.RoleMetadata(ctx, session.UserID)
		if err == nil {
			meta = fetched
		}
	}
	return roles.Resolve(session.NativeRole, meta, session.OrganizationID)
}

func (g *Gate) deny(reason Reason, session identity.Session) Decision {
	obs.ObserveAuthzDecision(false, string(reason))
	return Decision{
		Allowed:        false,
		Reason:         reason,
		Role:           roles.RoleMember,
		UserID:         session.UserID,
		OrganizationID: session.OrganizationID,
	}
}

func permitted(role roles.Role, req Requirement) bool {
	if req.RequireAll {
		for _, p := range req.Permissions {
			if !roles.Can(role, p) {
				return false
			}
		}
		return true
	}
	for _, p := range req.Permissions {
		if roles.Can(role, p) {
			return true
		}
	}
	return false
}
