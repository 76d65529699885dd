package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	resumes map[string]Resume
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{resumes: make(map[string]Resume)}
}

func (m *MemoryRepo) Create(ctx context.Context, r Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumes[r.ID] = r
	return nil
}

func (m *MemoryRepo) GetByID(ctx context.Context, userID, id string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.resumes[id]
	if !ok || r.UserID != userID {
		return Resume{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Resume, 0)
	for _, r := range m.resumes {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepo) UpdateContent(ctx context.Context, r Resume) error {
	return m.update(ctx, r.UserID, r.ID, func(existing *Resume) {
		existing.Title = r.Title
		existing.Data = r.Data
		existing.CurrentContent = r.CurrentContent
		existing.OriginalContent = r.OriginalContent
		existing.LastOptimized = r.LastOptimized
		existing.UpdatedAt = r.UpdatedAt
	})
}

func (m *MemoryRepo) SetThumbnail(ctx context.Context, userID, id, key string) error {
	return m.update(ctx, userID, id, func(existing *Resume) {
		existing.ThumbnailKey = key
	})
}

func (m *MemoryRepo) SetLastOptimized(ctx context.Context, userID, id string, at time.Time) error {
	return m.update(ctx, userID, id, func(existing *Resume) {
		t := at
		existing.LastOptimized = &t
		existing.UpdatedAt = at
	})
}

func (m *MemoryRepo) update(ctx context.Context, userID, id string, fn func(*Resume)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.resumes[id]
	if !ok || existing.UserID != userID {
		return ErrNotFound
	}
	fn(&existing)
	m.resumes[id] = existing
	return nil
}
