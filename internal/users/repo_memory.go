package users

import (
	"context"
	"strings"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, user User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	existing, ok := r.users[user.ID]
	if !ok {
		if user.Plan == "" {
			user.Plan = PlanFree
		}
		if user.LastResetDate.IsZero() {
			user.LastResetDate = now
		}
		user.CreatedAt = now
		user.UpdatedAt = now
		r.users[user.ID] = user
		return user, nil
	}
	existing.Email = user.Email
	existing.Name = user.Name
	existing.Image = user.Image
	existing.UpdatedAt = now
	r.users[user.ID] = existing
	return existing, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.find(ctx, func(u User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *MemoryRepo) GetByStripeCustomer(ctx context.Context, customerID string) (User, error) {
	return r.find(ctx, func(u User) bool { return customerID != "" && u.StripeCustomerID == customerID })
}

func (r *MemoryRepo) find(ctx context.Context, match func(User) bool) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) Update(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = user
	return nil
}

func (r *MemoryRepo) ResetIfNewMonth(ctx context.Context, userID string, now time.Time) (User, error) {
	return r.mutate(ctx, userID, func(u *User) {
		applyMonthlyReset(u, now)
	})
}

func (r *MemoryRepo) IncrementResumeCount(ctx context.Context, userID string, now time.Time) (User, error) {
	return r.mutate(ctx, userID, func(u *User) {
		applyMonthlyReset(u, now)
		u.ResumesCreated++
		u.MonthlyResumesCreated++
	})
}

func (r *MemoryRepo) mutate(ctx context.Context, userID string, fn func(*User)) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	fn(&u)
	r.users[userID] = u
	return u, nil
}
