package applications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"resume-tailor/resume/model"
)

type PGRepo struct {
	DB *sql.DB
}

const applicationColumns = `id, user_id, resume_id, company_name, job_title, job_description, job_url, status,
  match_score, ats_score, readability_score, completeness_score, category_scores, matched_keywords,
  missing_keywords, suggestions, optimized_content, analysis_summary, analysis_source, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) Create(ctx context.Context, app JobApplication) error {
	const query = `
INSERT INTO job_applications (id, user_id, resume_id, company_name, job_title, job_description, job_url, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		app.ID,
		app.UserID,
		app.ResumeID,
		app.Company,
		app.JobTitle,
		app.JobDescription,
		nullableString(app.JobURL),
		string(app.Status),
		app.CreatedAt,
		app.UpdatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (JobApplication, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM job_applications WHERE id = $1 AND user_id = $2 LIMIT 1`, id, userID)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return JobApplication{}, ErrNotFound
	}
	return app, err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID, resumeID string) ([]JobApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM job_applications WHERE user_id = $1`
	args := []any{userID}
	if resumeID != "" {
		query += ` AND resume_id = $2`
		args = append(args, resumeID)
	}
	query += ` ORDER BY updated_at DESC, id DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]JobApplication, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func (r *PGRepo) LatestForResume(ctx context.Context, userID, resumeID string) (JobApplication, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM job_applications
WHERE user_id = $1 AND resume_id = $2
ORDER BY updated_at DESC, id DESC
LIMIT 1`, userID, resumeID)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return JobApplication{}, ErrNotFound
	}
	return app, err
}

func (r *PGRepo) SaveAnalysis(ctx context.Context, app JobApplication) error {
	const query = `
UPDATE job_applications SET
  status = $3,
  match_score = $4,
  ats_score = $5,
  readability_score = $6,
  completeness_score = $7,
  category_scores = $8,
  matched_keywords = $9,
  missing_keywords = $10,
  suggestions = $11,
  optimized_content = $12,
  analysis_summary = $13,
  analysis_source = $14,
  updated_at = $15
WHERE id = $1 AND user_id = $2`
	app = app.withDefaults()
	categories, err := marshalJSONB(app.CategoryScores)
	if err != nil {
		return err
	}
	matched, err := marshalJSONB(app.MatchedKeywords)
	if err != nil {
		return err
	}
	missing, err := marshalJSONB(app.MissingKeywords)
	if err != nil {
		return err
	}
	suggestions, err := marshalJSONB(app.Suggestions)
	if err != nil {
		return err
	}
	var optimized any
	if app.OptimizedContent != nil {
		payload, err := json.Marshal(app.OptimizedContent)
		if err != nil {
			return err
		}
		optimized = payload
	}
	res, err := r.DB.ExecContext(ctx, query,
		app.ID,
		app.UserID,
		string(app.Status),
		app.MatchScore,
		app.ATSScore,
		app.ReadabilityScore,
		app.CompletenessScore,
		categories,
		matched,
		missing,
		suggestions,
		optimized,
		app.AnalysisSummary,
		app.AnalysisSource,
		app.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanApplication(row rowScanner) (JobApplication, error) {
	var app JobApplication
	var status string
	var jobURL sql.NullString
	var match, ats, readability, completeness sql.NullInt64
	var categories, matched, missing, suggestions, optimized []byte
	err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.ResumeID,
		&app.Company,
		&app.JobTitle,
		&app.JobDescription,
		&jobURL,
		&status,
		&match,
		&ats,
		&readability,
		&completeness,
		&categories,
		&matched,
		&missing,
		&suggestions,
		&optimized,
		&app.AnalysisSummary,
		&app.AnalysisSource,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return JobApplication{}, err
	}
	app.JobURL = jobURL.String
	app.Status = Status(status)
	app.MatchScore = nullableInt(match)
	app.ATSScore = nullableInt(ats)
	app.ReadabilityScore = nullableInt(readability)
	app.CompletenessScore = nullableInt(completeness)
	for _, field := range []struct {
		raw  []byte
		dest any
	}{
		{categories, &app.CategoryScores},
		{matched, &app.MatchedKeywords},
		{missing, &app.MissingKeywords},
		{suggestions, &app.Suggestions},
	} {
		if len(field.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(field.raw, field.dest); err != nil {
			return JobApplication{}, fmt.Errorf("decode application %s: %w", app.ID, err)
		}
	}
	if len(optimized) > 0 && string(optimized) != "null" {
		var content model.ResumeData
		if err := json.Unmarshal(optimized, &content); err != nil {
			return JobApplication{}, fmt.Errorf("decode optimized content %s: %w", app.ID, err)
		}
		app.OptimizedContent = &content
	}
	return app.withDefaults(), nil
}

func marshalJSONB(value any) ([]byte, error) {
	if value == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
