package resumes

import (
	"context"
	"time"
)

// Repo persists resumes. Lookups are scoped to the owning user.
type Repo interface {
	Create(ctx context.Context, r Resume) error
	GetByID(ctx context.Context, userID, id string) (Resume, error)
	ListByUser(ctx context.Context, userID string) ([]Resume, error)
	UpdateContent(ctx context.Context, r Resume) error
	SetThumbnail(ctx context.Context, userID, id, key string) error
	SetLastOptimized(ctx context.Context, userID, id string, at time.Time) error
}
