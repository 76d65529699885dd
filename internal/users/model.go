package users

import (
	"fmt"
	"strings"
	"time"
)

// Plan is a subscription tier.
type Plan string

const (
	PlanFree    Plan = "FREE"
	PlanPremium Plan = "PREMIUM"
)

// ParsePlan accepts a plan name in any case.
func ParsePlan(raw string) (Plan, error) {
	switch Plan(strings.ToUpper(strings.TrimSpace(raw))) {
	case PlanFree:
		return PlanFree, nil
	case PlanPremium:
		return PlanPremium, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPlan, raw)
	}
}

type User struct {
	ID                     string     `json:"id"`
	Email                  string     `json:"email"`
	Name                   string     `json:"name"`
	Image                  string     `json:"image"`
	Plan                   Plan       `json:"plan"`
	ResumesCreated         int        `json:"resumesCreated"`
	MonthlyResumesCreated  int        `json:"monthlyResumesCreated"`
	LastResetDate          time.Time  `json:"lastResetDate"`
	StripeCustomerID       string     `json:"-"`
	StripeSubscriptionID   string     `json:"-"`
	StripePriceID          string     `json:"-"`
	StripeCurrentPeriodEnd *time.Time `json:"-"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}

// Usage summarizes quota state for display. MonthlyLimit is nil for unlimited plans.
type Usage struct {
	Plan                  Plan      `json:"plan"`
	ResumesCreated        int       `json:"resumesCreated"`
	MonthlyResumesCreated int       `json:"monthlyResumesCreated"`
	MonthlyLimit          *int      `json:"monthlyLimit"`
	CanCreateResume       bool      `json:"canCreateResume"`
	LastResetDate         time.Time `json:"lastResetDate"`
}

// NeedsMonthlyReset reports whether now falls in a later calendar month than last.
func NeedsMonthlyReset(last, now time.Time) bool {
	if last.IsZero() {
		return true
	}
	ly, lm, _ := last.UTC().Date()
	ny, nm, _ := now.UTC().Date()
	return ny != ly || nm != lm
}

// applyMonthlyReset zeroes the monthly counter once per month boundary crossing.
func applyMonthlyReset(u *User, now time.Time) bool {
	if !NeedsMonthlyReset(u.LastResetDate, now) {
		return false
	}
	u.MonthlyResumesCreated = 0
	u.LastResetDate = now.UTC()
	return true
}
