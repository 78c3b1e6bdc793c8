package limits

import (
	"fmt"
	"strings"
)

// UpgradeInfo is the static upgrade suggestion shown when a limit denies a
// create. Copy is hand-written per (tier, resource) pair.
type UpgradeInfo struct {
	SuggestedTier Tier     `json:"suggestedTier"`
	Benefits      []string `json:"benefits"`
	Feature       string   `json:"feature"`
}

var upgradeTable = map[Tier]map[Resource]UpgradeInfo{
	TierFree: {
		ResourceChurches: {
			SuggestedTier: TierPro,
			Feature:       "multiple churches",
			Benefits: []string{
				"Unlimited churches",
				"Unlimited ministries",
				"Unlimited collaborators",
			},
		},
		ResourceMinistries: {
			SuggestedTier: TierTeam,
			Feature:       "more ministries",
			Benefits: []string{
				"25 ministries",
				"Unlimited collaborators",
			},
		},
		ResourceCollaborators: {
			SuggestedTier: TierTeam,
			Feature:       "more collaborators",
			Benefits: []string{
				"Unlimited collaborators",
				"25 ministries",
			},
		},
	},
	TierTeam: {
		ResourceChurches: {
			SuggestedTier: TierPro,
			Feature:       "multiple churches",
			Benefits: []string{
				"Unlimited churches",
				"Unlimited ministries",
			},
		},
		ResourceMinistries: {
			SuggestedTier: TierPro,
			Feature:       "unlimited ministries",
			Benefits: []string{
				"Unlimited ministries",
				"Unlimited churches",
			},
		},
		ResourceCollaborators: {
			SuggestedTier: TierPro,
			Feature:       "unlimited everything",
			Benefits: []string{
				"Unlimited churches",
				"Unlimited ministries",
				"Unlimited collaborators",
			},
		},
	},
}

// UpgradeFor returns the upgrade suggestion for a tier/resource pair. The
// pro tier (and service counts, which are never capped) have no suggestion.
func UpgradeFor(current Tier, resource Resource) (UpgradeInfo, bool) {
	info, ok := upgradeTable[current][resource]
	return info, ok
}

// TierDescription renders a short human summary of a tier's quotas, e.g.
// "1 church, 5 ministries, 5 collaborators". Church and ministry are
// singular when the quota is exactly 1; Unlimited renders as the word.
func TierDescription(tier Tier) string {
	quota := QuotaFor(tier)
	parts := []string{
		renderQuota(quota.Churches, "church", "churches"),
		renderQuota(quota.Ministries, "ministry", "ministries"),
		renderQuota(quota.Collaborators, "collaborators", "collaborators"),
	}
	return strings.Join(parts, ", ")
}

func renderQuota(limit int, singular, plural string) string {
	if limit == Unlimited {
		return "Unlimited " + plural
	}
	if limit == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", limit, plural)
}
