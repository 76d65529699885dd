package feedback

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	items []Feedback
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (m *MemoryRepo) Create(ctx context.Context, f Feedback) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, f)
	return nil
}

func (m *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Feedback, 0)
	for _, f := range m.items {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
