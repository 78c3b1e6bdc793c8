// Package httpapi exposes the role and subscription engine over HTTP/JSON.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"cantio.org/internal/authz"
	"cantio.org/internal/identity"
	"cantio.org/internal/limits"
	"cantio.org/internal/obs"
	"cantio.org/internal/roles"
)

// ReadyProbe pings the backing database for the readiness endpoint.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Store is the persistence surface the handlers need.
type Store interface {
	UsageStats(ctx context.Context, orgID string) (limits.Usage, error)
	Tier(ctx context.Context, orgID string) (limits.Tier, error)
	RoleMetadata(ctx context.Context, userID string) (roles.Metadata, error)
	SaveRoleMetadata(ctx context.Context, userID string, meta roles.Metadata) error
	CreateChurch(ctx context.Context, orgID, name string) (string, error)
	CreateMinistry(ctx context.Context, orgID, churchID, name string) (string, error)
}

// Authenticator performs credential login.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (identity.LoginResult, error)
}

// Config wires the API's collaborators.
type Config struct {
	Ready    ReadyProbe
	Version  string
	Store    Store
	Auth     Authenticator
	Provider identity.Provider
	Gate     *authz.Gate
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string
	store      Store
	auth       Authenticator
	gate       *authz.Gate
	mw         *authz.Middleware
}

func New(cfg Config) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: cfg.Ready,
		version:    cfg.Version,
		store:      cfg.Store,
		auth:       cfg.Auth,
		gate:       cfg.Gate,
	}
	a.mw = authz.NewMiddleware(cfg.Provider, cfg.Gate, func(w http.ResponseWriter, r *http.Request, d authz.Decision) {
		writeError(w, r, authz.StatusForReason(d.Reason), string(d.Reason))
	})

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)

	a.mux.Handle("/v1/me", a.mw.Authenticate(http.HandlerFunc(a.handleMe)))
	a.mux.Handle("/v1/roles/available", a.mw.Authenticate(http.HandlerFunc(a.handleAvailableRoles)))
	a.mux.Handle("/v1/organizations/", a.mw.Authenticate(http.HandlerFunc(a.handleOrganizationScoped)))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.mux)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "cantio-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "cantio-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// handleOrganizationScoped dispatches /v1/organizations/{orgID}/... routes.
func (a *API) handleOrganizationScoped(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/organizations/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	orgID := parts[0]
	switch parts[1] {
	case "roles":
		switch len(parts) {
		case 2:
			a.handleAssignRole(w, r, orgID)
		case 3:
			a.handleRevokeRole(w, r, orgID, parts[2])
		default:
			writeError(w, r, http.StatusNotFound, "resource not found")
		}
	case "usage":
		if len(parts) != 2 {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.handleUsage(w, r, orgID)
	case "limits":
		if len(parts) != 2 {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.handleLimitCheck(w, r, orgID)
	case "churches":
		if len(parts) != 2 {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.handleCreateChurch(w, r, orgID)
	case "ministries":
		if len(parts) != 2 {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.handleCreateMinistry(w, r, orgID)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

// sessionForOrg returns the authenticated session when it belongs to orgID.
// Cross-organization access is denied without revealing whether the target
// exists.
func (a *API) sessionForOrg(w http.ResponseWriter, r *http.Request, orgID string) (identity.Session, bool) {
	session, ok := identity.SessionFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, string(authz.ReasonUnauthenticated))
		return identity.Session{}, false
	}
	if session.OrganizationID == "" {
		writeError(w, r, http.StatusForbidden, string(authz.ReasonNoOrganization))
		return identity.Session{}, false
	}
	if session.OrganizationID != orgID {
		writeError(w, r, http.StatusForbidden, string(authz.ReasonInsufficientPermission))
		return identity.Session{}, false
	}
	return session, true
}

// requireDecision evaluates req for the session and writes the denial when
// the gate says no.
func (a *API) requireDecision(w http.ResponseWriter, r *http.Request, session identity.Session, req authz.Requirement) (authz.Decision, bool) {
	decision := a.gate.Authorize(r.Context(), session, req)
	if !decision.Allowed {
		writeError(w, r, authz.StatusForReason(decision.Reason), string(decision.Reason))
		return decision, false
	}
	return decision, true
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, _ *http.Request, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
