package identity

import (
	"context"
	"errors"
	"testing"
)

type stubCredentialStore struct {
	cred Credential
	err  error
}

func (s stubCredentialStore) CredentialByEmail(_ context.Context, _ string) (Credential, error) {
	return s.cred, s.err
}

func TestLoginSuccess(t *testing.T) {
	withSecret(t)

	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	svc, err := NewService(stubCredentialStore{cred: Credential{
		UserID:         "user_1",
		OrganizationID: "org_1",
		Email:          "leader@example.com",
		PasswordHash:   hash,
		NativeRole:     "org:worship_leader",
	}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result, err := svc.Login(context.Background(), " Leader@Example.com ", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token")
	}
	if result.Session.NativeRole != "org:worship_leader" {
		t.Fatalf("unexpected session: %+v", result.Session)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	withSecret(t)

	hash, _ := HashPassword("correct-password")
	svc, _ := NewService(stubCredentialStore{cred: Credential{UserID: "u", PasswordHash: hash}})

	if _, err := svc.Login(context.Background(), "a@b.c", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginDisabledUser(t *testing.T) {
	withSecret(t)

	hash, _ := HashPassword("correct-password")
	svc, _ := NewService(stubCredentialStore{cred: Credential{UserID: "u", PasswordHash: hash, Disabled: true}})

	if _, err := svc.Login(context.Background(), "a@b.c", "correct-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginStoreOutage(t *testing.T) {
	withSecret(t)

	svc, _ := NewService(stubCredentialStore{err: errors.New("connection refused")})
	if _, err := svc.Login(context.Background(), "a@b.c", "pw"); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected provider unavailable, got %v", err)
	}
}

func TestSessionContextRoundTrip(t *testing.T) {
	ctx := ContextWithSession(context.Background(), Session{UserID: "user_3", OrganizationID: "org_3"})
	session, ok := SessionFromContext(ctx)
	if !ok || session.UserID != "user_3" || session.OrganizationID != "org_3" {
		t.Fatalf("session did not round-trip: %+v ok=%v", session, ok)
	}
	if _, ok := SessionFromContext(context.Background()); ok {
		t.Fatalf("unexpected session in empty context")
	}
}
