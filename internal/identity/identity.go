// Package identity is the boundary to the identity provider: session
// authentication, the per-user role metadata blob, and credential login.
// The authorization gate only ever sees the Provider interface; everything
// behind it is replaceable.
package identity

import (
	"context"
	"errors"

	"cantio.org/internal/roles"
)

var (
	// ErrUnauthenticated means no verifiable subject is present. The gate
	// turns this into an "authentication required" denial.
	ErrUnauthenticated = errors.New("identity: unauthenticated")
	// ErrProviderUnavailable means identity itself could not be verified.
	// Unlike role-metadata failures this is surfaced, never downgraded.
	ErrProviderUnavailable = errors.New("identity: provider unavailable")
	// ErrInvalidCredentials rejects a login attempt.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
)

// Session is the authenticated subject as reported by the provider: who the
// user is, which organization they are acting in, and the provider-native
// coarse organization role (e.g. "org:admin").
type Session struct {
	UserID         string
	OrganizationID string
	NativeRole     string
}

// Provider authenticates bearer tokens into sessions.
type Provider interface {
	Authenticate(ctx context.Context, token string) (Session, error)
}

// MetadataStore reads and writes the per-user worship role metadata blob.
// A user without a stored blob yields an empty Metadata and no error.
type MetadataStore interface {
	RoleMetadata(ctx context.Context, userID string) (roles.Metadata, error)
	SaveRoleMetadata(ctx context.Context, userID string, meta roles.Metadata) error
}

// TokenProvider verifies stateless session tokens issued by this service.
type TokenProvider struct{}

// Authenticate parses and validates a session token.
func (TokenProvider) Authenticate(_ context.Context, token string) (Session, error) {
	claims, err := ParseAndValidate(token)
	if err != nil {
		if errors.Is(err, errMissingSecret) {
			return Session{}, ErrProviderUnavailable
		}
		return Session{}, ErrUnauthenticated
	}
	return Session{
		UserID:         claims.Subject,
		OrganizationID: claims.OrganizationID,
		NativeRole:     claims.OrgRole,
	}, nil
}
