package businessflow

import (
	"github.com/rentfold/rentfold/models"
)

// CheckQuota decides whether an account may create one more entity of the
// given resource type. Pure check, no side effects.
//
// Every tier is enforced against its stored numeric limit. Paid tiers carry
// large limits that act as practical ceilings; skipping the check for them
// would open a plan-tier bypass. A missing or zero stored limit falls back to
// the per-resource safety minimum instead of reading as "0 allowed" or
// "unlimited".
func CheckQuota(plan models.SubscriptionPlan, limit int, currentCount int64, resource models.QuotaResource) error {
	if limit <= 0 {
		limit = models.DefaultResourceLimit(resource)
	}

	if currentCount >= int64(limit) {
		return NewBusinessErrorf(
			"QUOTA_EXCEEDED",
			ErrQuotaExceeded,
			"%s plan is limited to %d %s. Please upgrade your plan.",
			planDisplayName(plan), limit, resource,
		)
	}

	return nil
}

func planDisplayName(plan models.SubscriptionPlan) string {
	switch plan {
	case models.PlanFree:
		return "Free"
	case models.PlanBasic:
		return "Basic"
	case models.PlanProfessional:
		return "Professional"
	case models.PlanEnterprise:
		return "Enterprise"
	default:
		return "Free"
	}
}
