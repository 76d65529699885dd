package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/analysis"
	"resume-tailor/internal/applications"
	"resume-tailor/internal/events"
	"resume-tailor/internal/extract"
	"resume-tailor/internal/parse"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/tailoring"
	"resume-tailor/internal/thumbnail"
	"resume-tailor/resume/model"
)

const (
	MaxUploadBytes = 10 << 20
	signedURLTTL   = 15 * time.Minute
)

// Quota gates resume creation per user plan.
type Quota interface {
	CanCreateResume(ctx context.Context, userID string) (bool, error)
	IncrementResumeCount(ctx context.Context, userID string) error
}

// Service owns the resume lifecycle: upload, editing, tailoring and analysis.
type Service struct {
	Repo         Repo
	Store        object.ObjectStore
	Quota        Quota
	Parser       *parse.Service
	Analysis     *analysis.Service
	Tailorer     tailoring.Tailorer
	Applications *applications.Service
	Thumbnails   thumbnail.Renderer
	Events       events.Publisher
	Now          func() time.Time
}

// UploadInput describes one uploaded file.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AnalyzeResult pairs the persisted application with the analysis output.
type AnalyzeResult struct {
	Application applications.JobApplication `json:"application"`
	Analysis    analysis.Result             `json:"analysis"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Upload validates, parses and stores a resume file.
func (s *Service) Upload(ctx context.Context, userID string, in UploadInput) (Resume, error) {
	if in.Size > MaxUploadBytes {
		return Resume{}, ErrFileTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(in.Body, MaxUploadBytes+1))
	if err != nil {
		return Resume{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return Resume{}, ErrFileTooLarge
	}
	if len(data) == 0 {
		return Resume{}, ErrUnreadable
	}
	mimeType := extract.NormalizeMimeType(in.ContentType, in.FileName, data)
	if !extract.IsSupported(mimeType) {
		return Resume{}, ErrUnsupportedType
	}

	if s.Quota != nil {
		allowed, err := s.Quota.CanCreateResume(ctx, userID)
		if err != nil {
			return Resume{}, fmt.Errorf("check quota: %w", err)
		}
		if !allowed {
			return Resume{}, ErrQuotaExceeded
		}
	}

	parsed, err := s.Parser.ParseResume(ctx, data, mimeType, in.FileName)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Resume{}, ctxErr
		}
		telemetry.Warn("resume.extract_failed", map[string]any{
			"user_id":   userID,
			"file_name": in.FileName,
			"error":     err,
		})
		return Resume{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	storageKey, size, err := s.Store.Save(ctx, userID, in.FileName, mimeType, bytes.NewReader(data))
	if err != nil {
		return Resume{}, fmt.Errorf("store upload: %w", err)
	}

	now := s.now()
	res := Resume{
		ID:            uuid.NewString(),
		UserID:        userID,
		Title:         titleFor(parsed.Data, in.FileName),
		RawText:       parsed.Text,
		ParseSource:   parsed.Source,
		FileName:      in.FileName,
		ContentType:   mimeType,
		SizeBytes:     size,
		StorageBucket: s.Store.Bucket(),
		StorageKey:    storageKey,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := res.setContent(parsed.Data); err != nil {
		_ = s.Store.Delete(ctx, storageKey)
		return Resume{}, fmt.Errorf("encode content: %w", err)
	}
	if err := s.Repo.Create(ctx, res); err != nil {
		if delErr := s.Store.Delete(ctx, storageKey); delErr != nil {
			telemetry.Warn("resume.cleanup_failed", map[string]any{"storage_key": storageKey, "error": delErr})
		}
		return Resume{}, fmt.Errorf("create resume: %w", err)
	}

	if s.Quota != nil {
		if err := s.Quota.IncrementResumeCount(ctx, userID); err != nil {
			telemetry.Error("resume.count_failed", map[string]any{"user_id": userID, "resume_id": res.ID, "error": err})
		}
	}

	res.ThumbnailKey = s.renderThumbnail(ctx, res)
	metrics.IncResumesUploaded()
	telemetry.Info("resume.uploaded", map[string]any{
		"user_id":      userID,
		"resume_id":    res.ID,
		"content_type": mimeType,
		"size_bytes":   size,
		"parse_source": parsed.Source,
	})
	events.Emit(ctx, s.Events, events.New(events.TypeResumeCreated, userID, res.ID, map[string]any{
		"contentType": mimeType,
		"parseSource": parsed.Source,
	}))
	return res, nil
}

// renderThumbnail stores a PNG preview and returns its key, or "" when none was made.
func (s *Service) renderThumbnail(ctx context.Context, res Resume) string {
	if s.Thumbnails == nil {
		return ""
	}
	png, err := s.Thumbnails.Render(ctx, thumbnail.FromResume(res.Data, res.Title))
	if err != nil {
		if !errors.Is(err, thumbnail.ErrDisabled) {
			telemetry.Warn("resume.thumbnail_failed", map[string]any{"resume_id": res.ID, "error": err})
		}
		return ""
	}
	key := object.ThumbnailKey(res.StorageKey)
	if _, err := s.Store.SaveWithKey(ctx, key, "image/png", bytes.NewReader(png)); err != nil {
		telemetry.Warn("resume.thumbnail_failed", map[string]any{"resume_id": res.ID, "error": err})
		return ""
	}
	if err := s.Repo.SetThumbnail(ctx, res.UserID, res.ID, key); err != nil {
		telemetry.Warn("resume.thumbnail_failed", map[string]any{"resume_id": res.ID, "error": err})
		return ""
	}
	return key
}

func (s *Service) Get(ctx context.Context, userID, id string) (Resume, error) {
	if strings.TrimSpace(id) == "" {
		return Resume{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string) ([]Resume, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// CheckOwnership lets applications confirm a resume belongs to the caller.
func (s *Service) CheckOwnership(ctx context.Context, userID, resumeID string) error {
	_, err := s.Get(ctx, userID, resumeID)
	if errors.Is(err, ErrNotFound) {
		return applications.ErrResumeNotFound
	}
	return err
}

// UpdateContent replaces the structured content after an editor save.
func (s *Service) UpdateContent(ctx context.Context, userID, id string, d model.ResumeData) (Resume, error) {
	if err := d.Validate(); err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return Resume{}, err
	}
	if err := res.setContent(d); err != nil {
		return Resume{}, err
	}
	res.UpdatedAt = s.now()
	if err := s.Repo.UpdateContent(ctx, res); err != nil {
		return Resume{}, fmt.Errorf("update resume: %w", err)
	}
	return res, nil
}

// Open streams the stored file.
func (s *Service) Open(ctx context.Context, userID, id string) (Resume, io.ReadCloser, error) {
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return Resume{}, nil, err
	}
	rc, err := s.Store.Open(ctx, res.StorageKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Resume{}, nil, ErrNotFound
		}
		return Resume{}, nil, err
	}
	return res, rc, nil
}

// Thumbnail streams the PNG preview when one was generated.
func (s *Service) Thumbnail(ctx context.Context, userID, id string) (io.ReadCloser, error) {
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if res.ThumbnailKey == "" {
		return nil, ErrNoThumbnail
	}
	rc, err := s.Store.Open(ctx, res.ThumbnailKey)
	if errors.Is(err, object.ErrNotFound) {
		return nil, ErrNoThumbnail
	}
	return rc, err
}

// SignedURL returns a presigned link for cloud stores and the API proxy path otherwise.
func (s *Service) SignedURL(ctx context.Context, userID, id string) (SignedURL, error) {
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return SignedURL{}, err
	}
	expires := s.now().Add(signedURLTTL)
	if presigner, ok := s.Store.(object.Presigner); ok && res.StorageBucket != "" {
		u, err := presigner.PresignGet(ctx, res.StorageKey, signedURLTTL)
		if err != nil {
			return SignedURL{}, fmt.Errorf("presign: %w", err)
		}
		return SignedURL{URL: u, ExpiresAt: expires}, nil
	}
	return SignedURL{URL: path.Join("/api/resumes", res.ID, "pdf"), ExpiresAt: expires}, nil
}

// Tailor rewrites the current content for a job. The first tailoring keeps a
// snapshot of the content as originally parsed.
func (s *Service) Tailor(ctx context.Context, userID, id string, job tailoring.Job) (Resume, error) {
	if err := job.Validate(); err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return Resume{}, err
	}
	tailored, err := s.Tailorer.Tailor(ctx, res.Data, job)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Resume{}, ctxErr
		}
		return Resume{}, fmt.Errorf("%w: %v", ErrTailorFailed, err)
	}
	if len(res.OriginalContent) == 0 || string(res.OriginalContent) == "null" {
		if len(res.CurrentContent) > 0 {
			res.OriginalContent = res.CurrentContent
		} else if err := snapshot(&res); err != nil {
			return Resume{}, err
		}
	}
	if err := res.setContent(tailored); err != nil {
		return Resume{}, err
	}
	now := s.now()
	res.LastOptimized = &now
	res.UpdatedAt = now
	if err := s.Repo.UpdateContent(ctx, res); err != nil {
		return Resume{}, fmt.Errorf("update resume: %w", err)
	}
	telemetry.Info("resume.tailored", map[string]any{"user_id": userID, "resume_id": id})
	return res, nil
}

func snapshot(res *Resume) error {
	copyOf := *res
	if err := copyOf.setContent(res.Data); err != nil {
		return err
	}
	res.OriginalContent = copyOf.CurrentContent
	return nil
}

// Analyze scores the resume against its latest application, or against a new
// application created from job when one is given.
func (s *Service) Analyze(ctx context.Context, userID, id string, job *applications.CreateInput) (AnalyzeResult, error) {
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return AnalyzeResult{}, err
	}

	var app applications.JobApplication
	if job != nil {
		in := *job
		in.ResumeID = res.ID
		app, err = s.Applications.Create(ctx, userID, in)
		if err != nil {
			if errors.Is(err, applications.ErrInvalidInput) {
				return AnalyzeResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return AnalyzeResult{}, err
		}
	} else {
		app, err = s.Applications.Latest(ctx, userID, res.ID)
		if errors.Is(err, applications.ErrNotFound) {
			return AnalyzeResult{}, ErrNoApplication
		}
		if err != nil {
			return AnalyzeResult{}, err
		}
	}

	result, err := s.Analysis.Analyze(ctx, analysis.Input{
		Resume:         res.Data,
		ResumeText:     res.RawText,
		JobTitle:       app.JobTitle,
		Company:        app.Company,
		JobDescription: app.JobDescription,
	})
	if err != nil {
		return AnalyzeResult{}, err
	}
	app, err = s.Applications.SaveAnalysis(ctx, app, result)
	if err != nil {
		return AnalyzeResult{}, err
	}
	if err := s.Repo.SetLastOptimized(ctx, userID, res.ID, app.UpdatedAt); err != nil {
		telemetry.Warn("resume.last_optimized_failed", map[string]any{"resume_id": res.ID, "error": err})
	}
	events.Emit(ctx, s.Events, events.New(events.TypeApplicationOptimized, userID, app.ID, map[string]any{
		"resumeId":   res.ID,
		"matchScore": result.MatchScore,
		"source":     result.Source,
	}))
	return AnalyzeResult{Application: app, Analysis: result}, nil
}

func titleFor(d model.ResumeData, fileName string) string {
	if name := strings.TrimSpace(d.Contact.Name); name != "" {
		return name
	}
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base = strings.TrimSpace(base); base == "" || base == "." || base == "/" {
		return "Untitled resume"
	}
	return base
}
