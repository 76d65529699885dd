package feedback

import (
	"context"
	"database/sql"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, f Feedback) error {
	const query = `
INSERT INTO feedback (id, user_id, type, message, page_url, rating, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	var rating any
	if f.Rating != nil {
		rating = *f.Rating
	}
	_, err := r.DB.ExecContext(ctx, query, f.ID, f.UserID, string(f.Type), f.Message, f.PageURL, rating, f.CreatedAt)
	return err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Feedback, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, user_id, type, message, page_url, rating, created_at
FROM feedback WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Feedback, 0)
	for rows.Next() {
		var f Feedback
		var kind string
		var rating sql.NullInt64
		if err := rows.Scan(&f.ID, &f.UserID, &kind, &f.Message, &f.PageURL, &rating, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.Type = Type(kind)
		if rating.Valid {
			v := int(rating.Int64)
			f.Rating = &v
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
