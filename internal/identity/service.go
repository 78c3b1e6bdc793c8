package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const defaultSessionTTL = 12 * time.Hour

// Credential is the stored login record for a user.
type Credential struct {
	UserID         string
	OrganizationID string
	Email          string
	PasswordHash   string
	NativeRole     string
	Disabled       bool
}

// CredentialStore looks up login records by email.
type CredentialStore interface {
	CredentialByEmail(ctx context.Context, email string) (Credential, error)
}

// Service performs credential login and issues session tokens. It stands in
// for the hosted identity provider; the rest of the system only consumes
// Provider and MetadataStore.
type Service struct {
	creds      CredentialStore
	sessionTTL time.Duration
}

// ServiceOption configures Service.
type ServiceOption func(*Service)

// WithSessionTTL overrides the issued token lifetime.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// NewService constructs a Service over a credential store.
func NewService(creds CredentialStore, opts ...ServiceOption) (*Service, error) {
	if creds == nil {
		return nil, errors.New("identity: credential store is required")
	}
	s := &Service{creds: creds, sessionTTL: defaultSessionTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LoginResult carries the issued token and its session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Session   Session
}

// Login verifies email/password and issues a session token. Lookup and
// verification failures collapse into ErrInvalidCredentials so the response
// does not reveal which part failed; infrastructure errors pass through as
// ErrProviderUnavailable.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	cred, err := s.creds.CredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if cred.Disabled {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(cred.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	token, err := GenerateToken(cred.UserID, cred.OrganizationID, cred.NativeRole, s.sessionTTL)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return LoginResult{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.sessionTTL),
		Session: Session{
			UserID:         cred.UserID,
			OrganizationID: cred.OrganizationID,
			NativeRole:     cred.NativeRole,
		},
	}, nil
}
