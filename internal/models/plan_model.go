package models

// Plan is the subscription tier of a profile.
type Plan string

const (
	PlanFree  Plan = "free"
	PlanPro   Plan = "pro"
	PlanElite Plan = "elite"
)

// Credit allowances per plan. Elite uses a large sentinel instead of a real "unlimited" flag.
const (
	FreeDailyCredits = 3
	ProCredits       = 10
	EliteCredits     = 99999
)

// Valid reports whether p is one of the known plans.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanElite:
		return true
	}
	return false
}

// CreditsForPlan returns the credit balance a profile receives when it is moved to plan p.
// Unknown plans fall back to the free allowance.
func CreditsForPlan(p Plan) int {
	switch p {
	case PlanPro:
		return ProCredits
	case PlanElite:
		return EliteCredits
	default:
		return FreeDailyCredits
	}
}
