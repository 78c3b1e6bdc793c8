package roles

import "time"

// Assignment is a custom role grant scoped to one (user, organization) pair.
// At most one assignment is kept per organization; a later grant replaces the
// whole record, and revocation flips Active while retaining the record.
type Assignment struct {
	Role       Role      `json:"role"`
	ChurchID   int64     `json:"churchId,omitempty"`
	AssignedBy string    `json:"assignedBy"`
	AssignedAt time.Time `json:"assignedAt"`
	Active     bool      `json:"isActive"`
}

// Metadata is the per-user role metadata blob persisted by the identity
// collaborator: one assignment per organization id plus an optional default
// role used when no entry exists.
type Metadata struct {
	DefaultRole Role                  `json:"defaultRole,omitempty"`
	Orgs        map[string]Assignment `json:"worshipRoles,omitempty"`
}

// NewAssignment builds an active assignment stamped at the current time.
// AssignedAt is truncated to second precision so the RFC3339 form written by
// encoding/json round-trips to an equal value.
func NewAssignment(role Role, assignedBy string, churchID int64) Assignment {
	return Assignment{
		Role:       role,
		ChurchID:   churchID,
		AssignedBy: assignedBy,
		AssignedAt: time.Now().UTC().Truncate(time.Second),
		Active:     true,
	}
}

// Merge returns a copy of m with the assignment for orgID replaced. Entries
// for other organizations are carried over untouched. The receiver is never
// mutated; a nil-map Metadata is treated as empty.
func (m Metadata) Merge(orgID string, a Assignment) Metadata {
	out := Metadata{
		DefaultRole: m.DefaultRole,
		Orgs:        make(map[string]Assignment, len(m.Orgs)+1),
	}
	for k, v := range m.Orgs {
		out.Orgs[k] = v
	}
	out.Orgs[orgID] = a
	return out
}

// Revoke returns a copy of m with the assignment for orgID deactivated. The
// record itself is retained so the grant history stays visible; resolution
// treats an inactive entry as member. Revoking a missing entry is a no-op,
// never an error, and the operation is idempotent.
func (m Metadata) Revoke(orgID string) Metadata {
	existing, ok := m.Orgs[orgID]
	if !ok {
		return m
	}
	existing.Active = false
	return m.Merge(orgID, existing)
}

// Assignment returns the entry for orgID if one exists.
func (m Metadata) Assignment(orgID string) (Assignment, bool) {
	a, ok := m.Orgs[orgID]
	return a, ok
}
