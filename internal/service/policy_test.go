package service

import (
	"testing"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/infrastructure"
)

func TestStaticAdminPolicy(t *testing.T) {
	policy := NewStaticAdminPolicy([]string{" Root@Example.com ", "", "ops@example.com"})

	tests := []struct {
		email string
		want  bool
	}{
		{"root@example.com", true},
		{"ROOT@EXAMPLE.COM", true},
		{"ops@example.com", true},
		{"user@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := policy.IsAdmin(domain.Identity{ExternalID: "x", Email: tt.email}); got != tt.want {
			t.Errorf("IsAdmin(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestPlanLimits(t *testing.T) {
	limits := NewPlanLimits(infrastructure.PlansConfig{FreePlatformLimit: 3, ProPlatformLimit: 0})

	if got := limits.For(domain.PlanFree); got != 3 {
		t.Errorf("free = %d, want 3", got)
	}
	if got := limits.For(domain.PlanPro); got != 0 {
		t.Errorf("pro = %d, want 0", got)
	}
	if got := limits.For(domain.Plan("legacy")); got != 3 {
		t.Errorf("unknown plan = %d, want the free limit", got)
	}
}
