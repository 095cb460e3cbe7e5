package billing

import "testing"

func TestNormalizePlan(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "free", want: "free"},
		{in: "starter", want: "starter"},
		{in: "pro", want: "pro"},
		{in: "business", want: "business"},
		{in: "BUSINESS", want: "business"},
		{in: "invalid", want: "free"},
	}

	for _, tt := range tests {
		if got := normalizePlan(tt.in); got != tt.want {
			t.Fatalf("normalizePlan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlanRank(t *testing.T) {
	if planRank("free") >= planRank("starter") {
		t.Fatalf("expected starter to outrank free")
	}
	if planRank("starter") >= planRank("pro") {
		t.Fatalf("expected pro to outrank starter")
	}
	if planRank("pro") >= planRank("business") {
		t.Fatalf("expected business to outrank pro")
	}
}

func TestNormalizeInterval(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "month", want: "month"},
		{in: "YEAR", want: "year"},
		{in: "weekly", want: "unknown"},
		{in: "", want: "unknown"},
	}

	for _, tt := range tests {
		if got := normalizeInterval(tt.in); got != tt.want {
			t.Fatalf("normalizeInterval(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsEntitlingStatus(t *testing.T) {
	for _, status := range []string{"active", "trialing", "past_due"} {
		if !isEntitlingStatus(status) {
			t.Fatalf("expected status %q to be entitling", status)
		}
	}
	for _, status := range []string{"canceled", "incomplete", "expired", "paused"} {
		if isEntitlingStatus(status) {
			t.Fatalf("expected status %q to be non-entitling", status)
		}
	}
}
