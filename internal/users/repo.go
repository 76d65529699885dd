package users

import (
	"context"
	"time"
)

type Repo interface {
	// Upsert records a sign-in. Existing plan, counters and billing ids are kept.
	Upsert(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByStripeCustomer(ctx context.Context, customerID string) (User, error)
	Update(ctx context.Context, user User) error
	// ResetIfNewMonth applies the lazy monthly reset atomically.
	ResetIfNewMonth(ctx context.Context, userID string, now time.Time) (User, error)
	// IncrementResumeCount resets if needed, then bumps both counters atomically.
	IncrementResumeCount(ctx context.Context, userID string, now time.Time) (User, error)
}
