package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cantio.org/internal/limits"
)

// UsageStats returns the organization's current resource counts in one round
// trip. Counts are a point-in-time snapshot; concurrent creates racing the
// read are not serialized here.
func (s *Store) UsageStats(ctx context.Context, orgID string) (limits.Usage, error) {
	var usage limits.Usage
	err := s.db.QueryRowContext(ctx, `
		select
			(select count(*) from churches where organization_id = $1),
			(select count(*) from ministries where organization_id = $1),
			(select count(*) from memberships where organization_id = $1 and role <> 'member'),
			(select count(*) from services where organization_id = $1)
	`, orgID).Scan(&usage.Churches, &usage.Ministries, &usage.Collaborators, &usage.Services)
	if err != nil {
		return limits.Usage{}, fmt.Errorf("usage stats for %s: %w", orgID, err)
	}
	return usage, nil
}

// Tier returns the organization's subscription tier. Organizations without a
// subscription row are on the free plan.
func (s *Store) Tier(ctx context.Context, orgID string) (limits.Tier, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		select tier from subscriptions
		where organization_id = $1 and status = 'active'
		order by created_at desc
		limit 1
	`, orgID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return limits.TierFree, nil
	}
	if err != nil {
		return limits.TierFree, fmt.Errorf("tier for %s: %w", orgID, err)
	}
	return limits.ParseTier(raw), nil
}

// CreateChurch inserts a church and returns its id. Callers must have passed
// both the permission gate and the churches limit check first.
func (s *Store) CreateChurch(ctx context.Context, orgID, name string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		insert into churches (id, organization_id, name)
		values ($1, $2, $3)
		returning id
	`, newID(), orgID, name).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create church: %w", err)
	}
	return id, nil
}

// CreateMinistry inserts a ministry scoped to a church within the
// organization and returns its id.
func (s *Store) CreateMinistry(ctx context.Context, orgID, churchID, name string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		insert into ministries (id, organization_id, church_id, name)
		values ($1, $2, $3, $4)
		returning id
	`, newID(), orgID, nullable(churchID), name).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create ministry: %w", err)
	}
	return id, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
