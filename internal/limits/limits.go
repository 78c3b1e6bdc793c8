// Package limits implements the subscription-tier quota engine: per-tier
// resource quotas, the gate-before-create limit check, usage percentages,
// warning levels, and tier recommendations. All functions are pure.
package limits

import "strings"

// Tier is a subscription plan.
type Tier string

const (
	TierFree Tier = "free"
	TierTeam Tier = "team"
	TierPro  Tier = "pro"
)

// Resource is a countable resource kind gated by tier quotas.
type Resource string

const (
	ResourceChurches      Resource = "churches"
	ResourceMinistries    Resource = "ministries"
	ResourceCollaborators Resource = "collaborators"
	ResourceServices      Resource = "services"
)

// Unlimited marks a quota with no cap.
const Unlimited = -1

// Resources lists every gated resource kind.
var Resources = []Resource{ResourceChurches, ResourceMinistries, ResourceCollaborators, ResourceServices}

// Usage holds the current resource counts for one organization. Counts are
// pre-creation snapshots, not post-creation totals.
type Usage struct {
	Churches      int `json:"churches"`
	Ministries    int `json:"ministries"`
	Collaborators int `json:"collaborators"`
	Services      int `json:"services"`
}

// Count returns the usage value for a resource kind.
func (u Usage) Count(r Resource) int {
	switch r {
	case ResourceChurches:
		return u.Churches
	case ResourceMinistries:
		return u.Ministries
	case ResourceCollaborators:
		return u.Collaborators
	case ResourceServices:
		return u.Services
	default:
		return 0
	}
}

// Quota is the per-tier cap set. Unlimited (-1) dominates any finite cap.
type Quota struct {
	Churches      int `json:"churches"`
	Ministries    int `json:"ministries"`
	Collaborators int `json:"collaborators"`
	Services      int `json:"services"`
}

// Cap returns the quota value for a resource kind.
func (q Quota) Cap(r Resource) int {
	switch r {
	case ResourceChurches:
		return q.Churches
	case ResourceMinistries:
		return q.Ministries
	case ResourceCollaborators:
		return q.Collaborators
	case ResourceServices:
		return q.Services
	default:
		return 0
	}
}

// tierQuotas is the plan table. Generosity is non-decreasing free→team→pro
// for every resource.
var tierQuotas = map[Tier]Quota{
	TierFree: {Churches: 1, Ministries: 5, Collaborators: 5, Services: Unlimited},
	TierTeam: {Churches: 1, Ministries: 25, Collaborators: Unlimited, Services: Unlimited},
	TierPro:  {Churches: Unlimited, Ministries: Unlimited, Collaborators: Unlimited, Services: Unlimited},
}

// tiersByPrice orders plans from cheapest to most expensive.
var tiersByPrice = []Tier{TierFree, TierTeam, TierPro}

// QuotaFor returns the quota set of a tier. Unknown tiers fall back to the
// free plan, the most restrictive.
func QuotaFor(tier Tier) Quota {
	if q, ok := tierQuotas[tier]; ok {
		return q
	}
	return tierQuotas[TierFree]
}

// ParseTier normalizes an untrusted tier string, falling back to free.
func ParseTier(s string) Tier {
	t := Tier(strings.TrimSpace(strings.ToLower(s)))
	if _, ok := tierQuotas[t]; ok {
		return t
	}
	return TierFree
}
