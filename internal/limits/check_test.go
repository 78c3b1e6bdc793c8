package limits

import (
	"strings"
	"testing"
)

func TestCheckLimitBoundary(t *testing.T) {
	usage := Usage{Ministries: 4}
	res := CheckLimit(TierFree, usage, ResourceMinistries)
	if !res.Allowed {
		t.Fatalf("4 of 5 ministries must still allow a create: %+v", res)
	}

	usage.Ministries = 5
	res = CheckLimit(TierFree, usage, ResourceMinistries)
	if res.Allowed {
		t.Fatalf("5 of 5 ministries must deny the next create")
	}
	if !strings.Contains(res.Message, "5/5") {
		t.Fatalf("message should contain 5/5, got %q", res.Message)
	}
	if !strings.Contains(res.Message, "ministries") || !strings.Contains(res.Message, "free") {
		t.Fatalf("message should name resource and plan, got %q", res.Message)
	}
}

func TestCheckLimitUnlimitedBypass(t *testing.T) {
	for _, churches := range []int{0, 1, 10000} {
		res := CheckLimit(TierPro, Usage{Churches: churches}, ResourceChurches)
		if !res.Allowed {
			t.Fatalf("pro churches must always allow, usage=%d", churches)
		}
		if res.Limit != Unlimited {
			t.Fatalf("expected limit -1, got %d", res.Limit)
		}
		if res.Message != "" {
			t.Fatalf("unlimited checks carry no message, got %q", res.Message)
		}
	}
}

func TestCheckLimitsIndependentPerResource(t *testing.T) {
	usage := Usage{Churches: 1, Ministries: 2}
	results := CheckLimits(TierFree, usage, ResourceChurches, ResourceMinistries)
	if len(results) != 2 {
		t.Fatalf("expected two results, got %d", len(results))
	}
	if results[ResourceChurches].Allowed {
		t.Fatalf("free plan allows a single church")
	}
	if !results[ResourceMinistries].Allowed {
		t.Fatalf("2 of 5 ministries should allow")
	}
}

func TestUsagePercentageClamp(t *testing.T) {
	if got := UsagePercentage(TierFree, Usage{Ministries: 10}, ResourceMinistries); got != 100 {
		t.Fatalf("expected clamp at 100, got %v", got)
	}
	if got := UsagePercentage(TierFree, Usage{Ministries: 4}, ResourceMinistries); got != 80 {
		t.Fatalf("expected 80, got %v", got)
	}
	if got := UsagePercentage(TierPro, Usage{Churches: 999}, ResourceChurches); got != 0 {
		t.Fatalf("unlimited resources report 0, got %v", got)
	}
}

func TestWarnLevelBoundaries(t *testing.T) {
	cases := map[float64]WarningLevel{
		0:    WarnSafe,
		79:   WarnSafe,
		79.9: WarnSafe,
		80:   WarnWarning,
		99.9: WarnWarning,
		100:  WarnDanger,
		150:  WarnDanger,
	}
	for pct, want := range cases {
		if got := WarnLevel(pct); got != want {
			t.Fatalf("WarnLevel(%v)=%s, want %s", pct, got, want)
		}
	}
}

func TestWouldTierSolve(t *testing.T) {
	usage := Usage{Ministries: 5}
	if WouldTierSolve(TierFree, usage, ResourceMinistries) {
		t.Fatalf("free cannot fit a sixth ministry")
	}
	if !WouldTierSolve(TierTeam, usage, ResourceMinistries) {
		t.Fatalf("team fits a sixth ministry")
	}
	if !WouldTierSolve(TierPro, Usage{Churches: 100}, ResourceChurches) {
		t.Fatalf("pro is unlimited")
	}
	if WouldTierSolve(TierTeam, Usage{Churches: 1}, ResourceChurches) {
		t.Fatalf("team still caps churches at 1")
	}
}

func TestRecommendedTier(t *testing.T) {
	cases := []struct {
		usage Usage
		want  Tier
	}{
		{Usage{}, TierFree},
		{Usage{Churches: 1, Ministries: 5, Collaborators: 5, Services: 50}, TierFree},
		{Usage{Churches: 1, Ministries: 10, Collaborators: 3, Services: 15}, TierTeam},
		{Usage{Churches: 1, Ministries: 5, Collaborators: 6}, TierTeam},
		{Usage{Churches: 5}, TierPro},
		{Usage{Churches: 1, Ministries: 26}, TierPro},
	}
	for _, tc := range cases {
		if got := RecommendedTier(tc.usage); got != tc.want {
			t.Fatalf("RecommendedTier(%+v)=%s, want %s", tc.usage, got, tc.want)
		}
	}
}

func TestRecommendationUsesCurrentUsageNotNextCreate(t *testing.T) {
	// Exactly at the free caps: the next create is denied, but the
	// recommendation still says free because current usage fits.
	usage := Usage{Churches: 1, Ministries: 5, Collaborators: 5}
	if got := RecommendedTier(usage); got != TierFree {
		t.Fatalf("expected free, got %s", got)
	}
	if CheckLimit(TierFree, usage, ResourceMinistries).Allowed {
		t.Fatalf("gate must deny at the cap")
	}
}

func TestParseTier(t *testing.T) {
	if ParseTier(" Team ") != TierTeam {
		t.Fatalf("expected team")
	}
	if ParseTier("enterprise") != TierFree {
		t.Fatalf("unknown tiers fall back to free")
	}
}
