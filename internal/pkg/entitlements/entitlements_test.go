package entitlements

import "testing"

func TestNormalizePlan(t *testing.T) {
	tests := []struct {
		in   string
		want Plan
	}{
		{in: "free", want: PlanFree},
		{in: "starter", want: PlanStarter},
		{in: "pro", want: PlanPro},
		{in: "business", want: PlanBusiness},
		{in: "BUSINESS", want: PlanBusiness},
		{in: " pro ", want: PlanPro},
		{in: "invalid", want: PlanFree},
		{in: "", want: PlanFree},
	}

	for _, tt := range tests {
		if got := NormalizePlan(tt.in); got != tt.want {
			t.Fatalf("NormalizePlan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlanRankOrdering(t *testing.T) {
	for i := 1; i < len(Plans); i++ {
		if PlanRank(Plans[i-1]) >= PlanRank(Plans[i]) {
			t.Fatalf("expected %s to outrank %s", Plans[i], Plans[i-1])
		}
	}
}

// Entitlements must never regress when moving up a plan: every feature flag,
// allowed set and the variant limit is non-decreasing along the plan order.
func TestEntitlementsMonotonic(t *testing.T) {
	for i := 1; i < len(Plans); i++ {
		lower := EntitlementFor(Plans[i-1])
		higher := EntitlementFor(Plans[i])

		for _, f := range Features {
			if lower.Features[f] && !higher.Features[f] {
				t.Fatalf("feature %s regresses from %s to %s", f, Plans[i-1], Plans[i])
			}
		}
		for _, tone := range lower.AllowedTones {
			if !AllowsTone(Plans[i], tone) {
				t.Fatalf("tone %s regresses from %s to %s", tone, Plans[i-1], Plans[i])
			}
		}
		for _, format := range lower.AllowedFormats {
			if !AllowsFormat(Plans[i], format) {
				t.Fatalf("format %s regresses from %s to %s", format, Plans[i-1], Plans[i])
			}
		}
		if lower.MaxVariants > higher.MaxVariants {
			t.Fatalf("max variants regress from %s to %s", Plans[i-1], Plans[i])
		}
	}
}

func TestCatalogTotalOverPlans(t *testing.T) {
	for _, p := range Plans {
		e := EntitlementFor(p)
		if e.MaxVariants != 1 && e.MaxVariants != 3 {
			t.Fatalf("plan %s has invalid variant limit %d", p, e.MaxVariants)
		}
		if len(e.Features) != len(Features) {
			t.Fatalf("plan %s feature map is not total", p)
		}
	}

	// Unknown plans degrade to the free catalog entry.
	if EntitlementFor("enterprise").MaxVariants != EntitlementFor(PlanFree).MaxVariants {
		t.Fatalf("unknown plan should fall back to free")
	}
}

func TestFeatureLookups(t *testing.T) {
	if HasFeature(PlanFree, FeatureCalendar) {
		t.Fatalf("free plan must not unlock the calendar")
	}
	if !HasFeature(PlanStarter, FeatureCalendar) {
		t.Fatalf("starter plan unlocks the calendar")
	}
	if HasFeature(PlanPro, FeatureTeam) {
		t.Fatalf("team seats are business-only")
	}
	if !HasFeature(PlanBusiness, FeatureAPIAccess) {
		t.Fatalf("business plan unlocks API access")
	}
}
