package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"cantio.org/internal/identity"
	"cantio.org/internal/roles"
)

// RoleMetadata loads the user's worship role metadata blob. A user without a
// stored blob gets empty metadata and no error: absence of a custom grant is
// the normal state, not a failure.
func (s *Store) RoleMetadata(ctx context.Context, userID string) (roles.Metadata, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		select worship_roles from users where id = $1
	`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return roles.Metadata{}, nil
	}
	if err != nil {
		return roles.Metadata{}, fmt.Errorf("role metadata for %s: %w", userID, err)
	}
	if len(raw) == 0 {
		return roles.Metadata{}, nil
	}
	var meta roles.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return roles.Metadata{}, fmt.Errorf("decode role metadata for %s: %w", userID, err)
	}
	return meta, nil
}

// SaveRoleMetadata persists the blob produced by the pure lifecycle
// functions. The whole value is replaced; merge semantics live in
// roles.Metadata, not in SQL.
func (s *Store) SaveRoleMetadata(ctx context.Context, userID string, meta roles.Metadata) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode role metadata for %s: %w", userID, err)
	}
	res, err := s.db.ExecContext(ctx, `
		update users set worship_roles = $2, updated_at = now() where id = $1
	`, userID, raw)
	if err != nil {
		return fmt.Errorf("save role metadata for %s: %w", userID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("save role metadata: user %s not found", userID)
	}
	return nil
}

// CredentialByEmail returns the login record for an email address. Missing
// users map to ErrInvalidCredentials so login responses stay uniform.
func (s *Store) CredentialByEmail(ctx context.Context, email string) (identity.Credential, error) {
	var (
		cred   identity.Credential
		status string
	)
	err := s.db.QueryRowContext(ctx, `
		select id, organization_id, email, password_hash, native_role, status
		from users
		where email = $1
	`, email).Scan(&cred.UserID, &cred.OrganizationID, &cred.Email, &cred.PasswordHash, &cred.NativeRole, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.Credential{}, identity.ErrInvalidCredentials
	}
	if err != nil {
		return identity.Credential{}, fmt.Errorf("credential for %s: %w", email, err)
	}
	cred.Disabled = status != "active"
	return cred, nil
}
