package entitlements

import "strings"

type Plan string

const (
	PlanFree    Plan = "free"
	PlanStarter Plan = "starter"
	PlanPro     Plan = "pro"
)

// Features describes the capabilities a plan unlocks for a tenant.
type Features struct {
	Plan             Plan `json:"plan"`
	MaxMembers       int  `json:"max_members"`
	MaxProjects      int  `json:"max_projects"`
	AdsRemoved       bool `json:"ads_removed"`
	PrioritySupport  bool `json:"priority_support"`
	CustomBranding   bool `json:"custom_branding"`
	NotificationSMS  bool `json:"notification_sms"`
	AnalyticsHistory int  `json:"analytics_history_days"`
}

// NormalizePlan folds arbitrary plan strings onto a known plan, defaulting to
// free.
func NormalizePlan(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanStarter):
		return PlanStarter
	case string(PlanPro):
		return PlanPro
	default:
		return PlanFree
	}
}

// Rank orders plans so callers can pick the better of two.
func Rank(plan Plan) int {
	switch plan {
	case PlanPro:
		return 2
	case PlanStarter:
		return 1
	default:
		return 0
	}
}

// ForPlan returns the feature set a plan unlocks.
func ForPlan(plan Plan) Features {
	switch plan {
	case PlanPro:
		return Features{
			Plan:             PlanPro,
			MaxMembers:       100,
			MaxProjects:      50,
			AdsRemoved:       true,
			PrioritySupport:  true,
			CustomBranding:   true,
			NotificationSMS:  true,
			AnalyticsHistory: 365,
		}
	case PlanStarter:
		return Features{
			Plan:             PlanStarter,
			MaxMembers:       10,
			MaxProjects:      10,
			AdsRemoved:       true,
			AnalyticsHistory: 90,
		}
	default:
		return Features{
			Plan:             PlanFree,
			MaxMembers:       3,
			MaxProjects:      2,
			AnalyticsHistory: 7,
		}
	}
}
