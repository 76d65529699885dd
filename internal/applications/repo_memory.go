package applications

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu   sync.RWMutex
	apps map[string]JobApplication
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{apps: make(map[string]JobApplication)}
}

func (r *MemoryRepo) Create(ctx context.Context, app JobApplication) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[app.ID] = app
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, id string) (JobApplication, error) {
	if err := ctx.Err(); err != nil {
		return JobApplication{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[id]
	if !ok || app.UserID != userID {
		return JobApplication{}, ErrNotFound
	}
	return app, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID, resumeID string) ([]JobApplication, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]JobApplication, 0)
	for _, app := range r.apps {
		if app.UserID != userID || (resumeID != "" && app.ResumeID != resumeID) {
			continue
		}
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) LatestForResume(ctx context.Context, userID, resumeID string) (JobApplication, error) {
	list, err := r.ListByUser(ctx, userID, resumeID)
	if err != nil {
		return JobApplication{}, err
	}
	if len(list) == 0 {
		return JobApplication{}, ErrNotFound
	}
	return list[0], nil
}

func (r *MemoryRepo) SaveAnalysis(ctx context.Context, app JobApplication) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.apps[app.ID]
	if !ok || existing.UserID != app.UserID {
		return ErrNotFound
	}
	app.CreatedAt = existing.CreatedAt
	r.apps[app.ID] = app
	return nil
}
