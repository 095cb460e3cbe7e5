package billing

import (
	"strings"

	"github.com/postwiselab/Postwise/internal/pkg/entitlements"
)

func normalizePlan(plan string) string {
	return string(entitlements.NormalizePlan(plan))
}

func planRank(plan string) int {
	return entitlements.PlanRank(entitlements.Plan(plan))
}

func normalizeInterval(interval string) string {
	i := strings.ToLower(strings.TrimSpace(interval))
	switch i {
	case "month", "year":
		return i
	default:
		return "unknown"
	}
}

func isEntitlingStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "trialing", "past_due":
		return true
	default:
		return false
	}
}
