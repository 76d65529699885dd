package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"resume-tailor/internal/shared/telemetry"
)

// DefaultFreeMonthlyLimit is the FREE plan's monthly resume quota.
const DefaultFreeMonthlyLimit = 3

type Service struct {
	Repo      Repo
	FreeLimit int
	Now       func() time.Time
}

func NewService(repo Repo, freeLimit int) *Service {
	if freeLimit <= 0 {
		freeLimit = DefaultFreeMonthlyLimit
	}
	return &Service{Repo: repo, FreeLimit: freeLimit, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Service) ready() error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	return nil
}

// UpsertFromAuth persists the identity from a provider sign-in.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return User{}, errors.New("user id and email are required")
	}
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	return s.Repo.GetByEmail(ctx, strings.TrimSpace(email))
}

// EnsureMonthlyReset zeroes the monthly counter when now is in a later month
// than the stored reset date. Otherwise the user is returned unchanged.
func (s *Service) EnsureMonthlyReset(ctx context.Context, userID string, now time.Time) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	return s.Repo.ResetIfNewMonth(ctx, userID, now)
}

// CanCreateResume applies the lazy reset and checks the plan quota.
func (s *Service) CanCreateResume(ctx context.Context, userID string) (bool, error) {
	user, err := s.EnsureMonthlyReset(ctx, userID, s.now())
	if err != nil {
		return false, err
	}
	return s.canCreate(user), nil
}

func (s *Service) canCreate(user User) bool {
	if user.Plan == PlanPremium {
		return true
	}
	return user.MonthlyResumesCreated < s.FreeLimit
}

// IncrementResumeCount counts one created resume against both counters.
func (s *Service) IncrementResumeCount(ctx context.Context, userID string) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	user, err := s.Repo.IncrementResumeCount(ctx, userID, s.now())
	if err != nil {
		return User{}, err
	}
	telemetry.Debug("users.resume_counted", map[string]any{
		"user_id": userID,
		"monthly": user.MonthlyResumesCreated,
		"total":   user.ResumesCreated,
	})
	return user, nil
}

// Usage returns the quota summary after applying the lazy reset.
func (s *Service) Usage(ctx context.Context, userID string) (Usage, error) {
	user, err := s.EnsureMonthlyReset(ctx, userID, s.now())
	if err != nil {
		return Usage{}, err
	}
	return s.usageOf(user), nil
}

func (s *Service) usageOf(user User) Usage {
	u := Usage{
		Plan:                  user.Plan,
		ResumesCreated:        user.ResumesCreated,
		MonthlyResumesCreated: user.MonthlyResumesCreated,
		CanCreateResume:       s.canCreate(user),
		LastResetDate:         user.LastResetDate,
	}
	if user.Plan != PlanPremium {
		limit := s.FreeLimit
		u.MonthlyLimit = &limit
	}
	return u
}

func (s *Service) SetPlan(ctx context.Context, userID string, plan Plan) (User, error) {
	if _, err := ParsePlan(string(plan)); err != nil {
		return User{}, err
	}
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	user.Plan = plan
	if err := s.Repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	telemetry.Info("users.plan_changed", map[string]any{"user_id": userID, "plan": string(plan)})
	return user, nil
}

// ResetUsage clears the monthly counter regardless of the reset date.
func (s *Service) ResetUsage(ctx context.Context, userID string) (User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	user.MonthlyResumesCreated = 0
	user.LastResetDate = s.now()
	if err := s.Repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) SetStripeCustomer(ctx context.Context, userID, customerID string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.StripeCustomerID = customerID
	return s.Repo.Update(ctx, user)
}
