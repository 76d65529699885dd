package applications

import "context"

// Repo persists job applications. Every lookup is scoped to the owning user.
type Repo interface {
	Create(ctx context.Context, app JobApplication) error
	GetByID(ctx context.Context, userID, id string) (JobApplication, error)
	ListByUser(ctx context.Context, userID, resumeID string) ([]JobApplication, error)
	LatestForResume(ctx context.Context, userID, resumeID string) (JobApplication, error)
	SaveAnalysis(ctx context.Context, app JobApplication) error
}
