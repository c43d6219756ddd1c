package service

import (
	"strings"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/infrastructure"
)

// AdminPolicy decides whether a caller bypasses plan limits
type AdminPolicy interface {
	IsAdmin(identity domain.Identity) bool
}

// StaticAdminPolicy is an email allowlist fixed at startup
type StaticAdminPolicy struct {
	emails map[string]struct{}
}

// NewStaticAdminPolicy builds the allowlist; emails compare case-insensitively
func NewStaticAdminPolicy(emails []string) *StaticAdminPolicy {
	p := &StaticAdminPolicy{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			p.emails[e] = struct{}{}
		}
	}
	return p
}

// IsAdmin reports whether the identity's email is on the allowlist
func (p *StaticAdminPolicy) IsAdmin(identity domain.Identity) bool {
	email := normalizeEmail(identity.Email)
	if email == "" {
		return false
	}
	_, ok := p.emails[email]
	return ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PlanLimits maps a plan to its platform limit. Zero means unlimited.
type PlanLimits struct {
	Free int
	Pro  int
}

// NewPlanLimits reads the limits from configuration
func NewPlanLimits(cfg infrastructure.PlansConfig) PlanLimits {
	return PlanLimits{Free: cfg.FreePlatformLimit, Pro: cfg.ProPlatformLimit}
}

// For returns the limit for plan; unknown plans get the free limit
func (l PlanLimits) For(plan domain.Plan) int {
	if plan == domain.PlanPro {
		return l.Pro
	}
	return l.Free
}
