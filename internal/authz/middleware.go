package authz

import (
	"errors"
	"net/http"
	"strings"

	"cantio.org/internal/identity"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// Middleware authenticates bearer tokens and enforces requirements on HTTP
// handlers. Deny reasons map onto protocol statuses here and nowhere else.
type Middleware struct {
	provider identity.Provider
	gate     *Gate
	onDeny   func(w http.ResponseWriter, r *http.Request, d Decision)
}

// NewMiddleware wires a provider and gate. onDeny renders denials; if nil, a
// minimal JSON body is written.
func NewMiddleware(provider identity.Provider, gate *Gate, onDeny func(http.ResponseWriter, *http.Request, Decision)) *Middleware {
	if onDeny == nil {
		onDeny = writeDenial
	}
	return &Middleware{provider: provider, gate: gate, onDeny: onDeny}
}

// Authenticate verifies the bearer token and attaches the session, with its
// provider-native role string intact, to the request context. Requests
// without a valid session are denied outright; use Require on top of this
// for permission checks.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r.Header.Get(authHeader))
		if token == "" {
			m.onDeny(w, r, Decision{Reason: ReasonUnauthenticated})
			return
		}
		session, err := m.provider.Authenticate(r.Context(), token)
		if err != nil {
			reason := ReasonUnauthenticated
			if !errors.Is(err, identity.ErrUnauthenticated) {
				reason = ReasonAuthProviderError
			}
			m.onDeny(w, r, Decision{Reason: reason})
			return
		}
		ctx := identity.ContextWithSession(r.Context(), session)
		ctx = identity.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require enforces a requirement against the session already present in the
// request context (set by Authenticate).
func (m *Middleware) Require(req Requirement, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := identity.SessionFromContext(r.Context())
		if !ok {
			m.onDeny(w, r, Decision{Reason: ReasonUnauthenticated})
			return
		}
		decision := m.gate.Authorize(r.Context(), session, req)
		if !decision.Allowed {
			m.onDeny(w, r, decision)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StatusForReason maps a deny reason onto an HTTP status.
func StatusForReason(reason Reason) int {
	switch reason {
	case ReasonUnauthenticated:
		return http.StatusUnauthorized
	case ReasonAuthProviderError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusForbidden
	}
}

func writeDenial(w http.ResponseWriter, _ *http.Request, d Decision) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(StatusForReason(d.Reason))
	_, _ = w.Write([]byte(`{"error":"` + string(d.Reason) + `"}`))
}

func extractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return ""
	}
	return strings.TrimSpace(header[len(bearer):])
}
