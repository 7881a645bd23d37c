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
		{in: "PRO", want: PlanPro},
		{in: "  starter ", want: PlanStarter},
		{in: "enterprise", want: PlanFree},
		{in: "", want: PlanFree},
	}

	for _, tt := range tests {
		if got := NormalizePlan(tt.in); got != tt.want {
			t.Fatalf("NormalizePlan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRank(t *testing.T) {
	if Rank(PlanFree) >= Rank(PlanStarter) {
		t.Fatalf("expected starter to outrank free")
	}
	if Rank(PlanStarter) >= Rank(PlanPro) {
		t.Fatalf("expected pro to outrank starter")
	}
}

func TestForPlanLimits(t *testing.T) {
	free := ForPlan(PlanFree)
	if free.AdsRemoved || free.MaxMembers != 3 {
		t.Fatalf("unexpected free features: %+v", free)
	}

	pro := ForPlan(PlanPro)
	if !pro.AdsRemoved || !pro.PrioritySupport {
		t.Fatalf("unexpected pro features: %+v", pro)
	}
	if pro.MaxMembers <= ForPlan(PlanStarter).MaxMembers {
		t.Fatalf("expected pro member limit above starter")
	}
}
