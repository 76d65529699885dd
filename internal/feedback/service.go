package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/shared/telemetry"
)

type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: func() time.Time { return time.Now().UTC() }}
}

// Submit validates the raw payload and stores it for userID.
func (s *Service) Submit(ctx context.Context, userID string, payload []byte) (Feedback, error) {
	if err := Validate(payload); err != nil {
		return Feedback{}, err
	}
	var in submission
	if err := json.Unmarshal(payload, &in); err != nil {
		return Feedback{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	f := Feedback{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      in.Type,
		Message:   strings.TrimSpace(in.Message),
		PageURL:   strings.TrimSpace(in.PageURL),
		Rating:    in.Rating,
		CreatedAt: s.Now(),
	}
	if err := s.Repo.Create(ctx, f); err != nil {
		return Feedback{}, fmt.Errorf("create feedback: %w", err)
	}
	telemetry.Info("feedback.submitted", map[string]any{"user_id": userID, "feedback_id": f.ID, "type": string(f.Type)})
	return f, nil
}
