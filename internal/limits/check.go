package limits

import "fmt"

// CheckResult is the verdict of a single limit check. A denial is a normal
// result value carrying a user-facing message, never an error.
type CheckResult struct {
	Allowed bool     `json:"allowed"`
	Current int      `json:"current"`
	Limit   int      `json:"limit"`
	Tier    Tier     `json:"tier"`
	Message string   `json:"message,omitempty"`
	Kind    Resource `json:"resource"`
}

// CheckLimit decides whether creating ONE MORE unit of the resource would
// stay within the tier quota. The check is against current+1, not current:
// it gates the write that is about to happen.
func CheckLimit(tier Tier, usage Usage, resource Resource) CheckResult {
	current := usage.Count(resource)
	limit := QuotaFor(tier).Cap(resource)
	result := CheckResult{
		Allowed: true,
		Current: current,
		Limit:   limit,
		Tier:    tier,
		Kind:    resource,
	}
	if limit == Unlimited {
		return result
	}
	if current+1 > limit {
		result.Allowed = false
		result.Message = fmt.Sprintf("You've reached the %s limit for your %s plan (%d/%d)",
			resource, tier, current, limit)
	}
	return result
}

// CheckLimits applies CheckLimit independently per resource. Resources never
// interact with each other.
func CheckLimits(tier Tier, usage Usage, resources ...Resource) map[Resource]CheckResult {
	out := make(map[Resource]CheckResult, len(resources))
	for _, r := range resources {
		out[r] = CheckLimit(tier, usage, r)
	}
	return out
}

// UsagePercentage reports how much of the quota is consumed, clamped to 100.
// Unlimited resources always report 0.
func UsagePercentage(tier Tier, usage Usage, resource Resource) float64 {
	limit := QuotaFor(tier).Cap(resource)
	if limit == Unlimited {
		return 0
	}
	// Multiply before dividing so exact ratios (4 of 5 = 80%) stay exact.
	pct := float64(usage.Count(resource)*100) / float64(limit)
	if pct > 100 {
		return 100
	}
	return pct
}

// WarningLevel classifies a usage percentage.
type WarningLevel string

const (
	WarnSafe    WarningLevel = "safe"
	WarnWarning WarningLevel = "warning"
	WarnDanger  WarningLevel = "danger"
)

// WarnLevel returns danger at 100 and above, warning from 80 inclusive, and
// safe below.
func WarnLevel(percentage float64) WarningLevel {
	switch {
	case percentage >= 100:
		return WarnDanger
	case percentage >= 80:
		return WarnWarning
	default:
		return WarnSafe
	}
}

// WouldTierSolve reports whether creating one more unit of the resource
// would fit under the target tier's quota.
func WouldTierSolve(target Tier, usage Usage, resource Resource) bool {
	limit := QuotaFor(target).Cap(resource)
	if limit == Unlimited {
		return true
	}
	return usage.Count(resource)+1 <= limit
}

// RecommendedTier returns the cheapest tier whose quotas accommodate the
// usage AS-IS across all resources. This is deliberately different from
// CheckLimit's current+1 gate: a recommendation describes where existing
// usage fits, not whether the next create succeeds.
func RecommendedTier(usage Usage) Tier {
	for _, tier := range tiersByPrice {
		if usageFits(tier, usage) {
			return tier
		}
	}
	return TierPro
}

func usageFits(tier Tier, usage Usage) bool {
	quota := QuotaFor(tier)
	for _, r := range Resources {
		limit := quota.Cap(r)
		if limit == Unlimited {
			continue
		}
		if usage.Count(r) > limit {
			return false
		}
	}
	return true
}
