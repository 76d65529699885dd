package resumes

import (
	"context"

	"resume-tailor/internal/users"
)

// UserQuota adapts the users service to Quota.
type UserQuota struct {
	Users *users.Service
}

func (q UserQuota) CanCreateResume(ctx context.Context, userID string) (bool, error) {
	return q.Users.CanCreateResume(ctx, userID)
}

func (q UserQuota) IncrementResumeCount(ctx context.Context, userID string) error {
	_, err := q.Users.IncrementResumeCount(ctx, userID)
	return err
}
