package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, user_id, title, raw_text, contact, summary, experience, education, skills,
  current_content, original_content, parse_source, file_name, content_type, size_bytes,
  storage_bucket, storage_key, thumbnail_key, last_optimized, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) Create(ctx context.Context, res Resume) error {
	const query = `
INSERT INTO resumes (id, user_id, title, raw_text, contact, summary, experience, education, skills,
  current_content, original_content, parse_source, file_name, content_type, size_bytes,
  storage_bucket, storage_key, thumbnail_key, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	cols, err := contentColumns(res)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		res.ID,
		res.UserID,
		res.Title,
		res.RawText,
		cols.contact,
		res.Data.Summary,
		cols.experience,
		cols.education,
		cols.skills,
		rawJSON(res.CurrentContent),
		rawJSON(res.OriginalContent),
		res.ParseSource,
		res.FileName,
		res.ContentType,
		res.SizeBytes,
		res.StorageBucket,
		res.StorageKey,
		nullableString(res.ThumbnailKey),
		res.CreatedAt,
		res.UpdatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Resume, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE id = $1 AND user_id = $2 LIMIT 1`, id, userID)
	res, err := scanResume(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	return res, err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Resume, 0)
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateContent(ctx context.Context, res Resume) error {
	const query = `
UPDATE resumes SET
  title = $3,
  contact = $4,
  summary = $5,
  experience = $6,
  education = $7,
  skills = $8,
  current_content = $9,
  original_content = $10,
  last_optimized = $11,
  updated_at = $12
WHERE id = $1 AND user_id = $2`
	cols, err := contentColumns(res)
	if err != nil {
		return err
	}
	result, err := r.DB.ExecContext(ctx, query,
		res.ID,
		res.UserID,
		res.Title,
		cols.contact,
		res.Data.Summary,
		cols.experience,
		cols.education,
		cols.skills,
		rawJSON(res.CurrentContent),
		rawJSON(res.OriginalContent),
		nullableTime(res.LastOptimized),
		res.UpdatedAt,
	)
	return affected(result, err)
}

func (r *PGRepo) SetThumbnail(ctx context.Context, userID, id, key string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE resumes SET thumbnail_key = $3 WHERE id = $1 AND user_id = $2`, id, userID, nullableString(key))
	return affected(result, err)
}

func (r *PGRepo) SetLastOptimized(ctx context.Context, userID, id string, at time.Time) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE resumes SET last_optimized = $3, updated_at = $3 WHERE id = $1 AND user_id = $2`, id, userID, at)
	return affected(result, err)
}

func affected(result sql.Result, err error) error {
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type jsonColumns struct {
	contact, experience, education, skills []byte
}

func contentColumns(res Resume) (jsonColumns, error) {
	d := res.Data.Normalize()
	var cols jsonColumns
	var err error
	if cols.contact, err = json.Marshal(d.Contact); err != nil {
		return cols, err
	}
	if cols.experience, err = json.Marshal(d.Experience); err != nil {
		return cols, err
	}
	if cols.education, err = json.Marshal(d.Education); err != nil {
		return cols, err
	}
	if cols.skills, err = json.Marshal(d.Skills); err != nil {
		return cols, err
	}
	return cols, nil
}

func scanResume(row rowScanner) (Resume, error) {
	var res Resume
	var contact, experience, education, skills, current, original []byte
	var thumbnail sql.NullString
	var lastOptimized sql.NullTime
	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.Title,
		&res.RawText,
		&contact,
		&res.Data.Summary,
		&experience,
		&education,
		&skills,
		&current,
		&original,
		&res.ParseSource,
		&res.FileName,
		&res.ContentType,
		&res.SizeBytes,
		&res.StorageBucket,
		&res.StorageKey,
		&thumbnail,
		&lastOptimized,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return Resume{}, err
	}
	for _, field := range []struct {
		name string
		raw  []byte
		dest any
	}{
		{"contact", contact, &res.Data.Contact},
		{"experience", experience, &res.Data.Experience},
		{"education", education, &res.Data.Education},
		{"skills", skills, &res.Data.Skills},
	} {
		if len(field.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(field.raw, field.dest); err != nil {
			return Resume{}, fmt.Errorf("decode %s: %w", field.name, err)
		}
	}
	res.Data = res.Data.Normalize()
	res.CurrentContent = current
	res.OriginalContent = original
	res.ThumbnailKey = thumbnail.String
	if lastOptimized.Valid {
		t := lastOptimized.Time
		res.LastOptimized = &t
	}
	return res, nil
}

func rawJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}
