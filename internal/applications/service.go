package applications

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/analysis"
)

// ResumeOwnership confirms that a resume exists and belongs to a user.
type ResumeOwnership interface {
	CheckOwnership(ctx context.Context, userID, resumeID string) error
}

// Service manages job applications.
type Service struct {
	Repo    Repo
	Resumes ResumeOwnership
	Now     func() time.Time
}

func NewService(repo Repo, resumes ResumeOwnership) *Service {
	return &Service{Repo: repo, Resumes: resumes, Now: func() time.Time { return time.Now().UTC() }}
}

// Create opens a DRAFT application for a resume the user owns.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (JobApplication, error) {
	in = in.normalize()
	if err := validateCreate(in); err != nil {
		return JobApplication{}, err
	}
	if s.Resumes != nil {
		if err := s.Resumes.CheckOwnership(ctx, userID, in.ResumeID); err != nil {
			return JobApplication{}, err
		}
	}
	now := s.now()
	app := JobApplication{
		ID:             uuid.NewString(),
		UserID:         userID,
		ResumeID:       in.ResumeID,
		JobTitle:       in.JobTitle,
		Company:        in.Company,
		JobDescription: in.JobDescription,
		JobURL:         in.JobURL,
		Status:         StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}.withDefaults()
	if err := s.Repo.Create(ctx, app); err != nil {
		return JobApplication{}, fmt.Errorf("create application: %w", err)
	}
	return app, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (JobApplication, error) {
	if strings.TrimSpace(id) == "" {
		return JobApplication{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID, resumeID string) ([]JobApplication, error) {
	return s.Repo.ListByUser(ctx, userID, strings.TrimSpace(resumeID))
}

// Latest returns the most recently updated application for a resume.
func (s *Service) Latest(ctx context.Context, userID, resumeID string) (JobApplication, error) {
	return s.Repo.LatestForResume(ctx, userID, resumeID)
}

// SaveAnalysis applies r to app and persists it.
func (s *Service) SaveAnalysis(ctx context.Context, app JobApplication, r analysis.Result) (JobApplication, error) {
	updated := ApplyAnalysis(app, r, s.now())
	if err := s.Repo.SaveAnalysis(ctx, updated); err != nil {
		return JobApplication{}, fmt.Errorf("save analysis: %w", err)
	}
	return updated, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func validateCreate(in CreateInput) error {
	switch {
	case in.ResumeID == "":
		return fmt.Errorf("%w: resumeId is required", ErrInvalidInput)
	case in.JobTitle == "":
		return fmt.Errorf("%w: jobTitle is required", ErrInvalidInput)
	case in.JobDescription == "":
		return fmt.Errorf("%w: jobDescription is required", ErrInvalidInput)
	case len(in.JobDescription) > 50000:
		return fmt.Errorf("%w: jobDescription is too long", ErrInvalidInput)
	}
	if in.JobURL != "" {
		u, err := url.Parse(in.JobURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: jobUrl must be an http or https URL", ErrInvalidInput)
		}
	}
	return nil
}
