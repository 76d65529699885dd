package feedback

import "context"

type Repo interface {
	Create(ctx context.Context, f Feedback) error
	ListByUser(ctx context.Context, userID string) ([]Feedback, error)
}
