package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"resume-tailor/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, email, name, image, plan, resumes_created, monthly_resumes_created, last_reset_date,
  stripe_customer_id, stripe_subscription_id, stripe_price_id, stripe_current_period_end, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) Upsert(ctx context.Context, user User) (User, error) {
	query := `
INSERT INTO users (id, email, name, image, plan, last_reset_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, 'FREE', now(), now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  name = EXCLUDED.name,
  image = EXCLUDED.image,
  updated_at = now()
RETURNING ` + userColumns
	row := r.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		nullableString(user.Name),
		nullableString(user.Image),
	)
	return scanUser(row)
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1`, userID)
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) LIMIT 1`, email)
}

func (r *PGRepo) GetByStripeCustomer(ctx context.Context, customerID string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE stripe_customer_id = $1 LIMIT 1`, customerID)
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg any) (User, error) {
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *PGRepo) Update(ctx context.Context, user User) error {
	const query = `
UPDATE users SET
  name = $2,
  image = $3,
  plan = $4,
  resumes_created = $5,
  monthly_resumes_created = $6,
  last_reset_date = $7,
  stripe_customer_id = $8,
  stripe_subscription_id = $9,
  stripe_price_id = $10,
  stripe_current_period_end = $11,
  updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		user.ID,
		nullableString(user.Name),
		nullableString(user.Image),
		string(user.Plan),
		user.ResumesCreated,
		user.MonthlyResumesCreated,
		user.LastResetDate,
		nullableString(user.StripeCustomerID),
		nullableString(user.StripeSubscriptionID),
		nullableString(user.StripePriceID),
		nullableTime(user.StripeCurrentPeriodEnd),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ResetIfNewMonth(ctx context.Context, userID string, now time.Time) (User, error) {
	var out User
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		user, err := lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if applyMonthlyReset(&user, now) {
			if err := writeCounters(ctx, tx, user); err != nil {
				return err
			}
		}
		out = user
		return nil
	})
	return out, err
}

func (r *PGRepo) IncrementResumeCount(ctx context.Context, userID string, now time.Time) (User, error) {
	var out User
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		user, err := lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		applyMonthlyReset(&user, now)
		user.ResumesCreated++
		user.MonthlyResumesCreated++
		if err := writeCounters(ctx, tx, user); err != nil {
			return err
		}
		out = user
		return nil
	})
	return out, err
}

func lockUser(ctx context.Context, tx *sql.Tx, userID string) (User, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func writeCounters(ctx context.Context, tx *sql.Tx, user User) error {
	_, err := tx.ExecContext(ctx, `
UPDATE users SET resumes_created = $2, monthly_resumes_created = $3, last_reset_date = $4, updated_at = now()
WHERE id = $1`, user.ID, user.ResumesCreated, user.MonthlyResumesCreated, user.LastResetDate)
	return err
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var name, image, plan sql.NullString
	var customerID, subscriptionID, priceID sql.NullString
	var periodEnd sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Email,
		&name,
		&image,
		&plan,
		&user.ResumesCreated,
		&user.MonthlyResumesCreated,
		&user.LastResetDate,
		&customerID,
		&subscriptionID,
		&priceID,
		&periodEnd,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	user.Name = name.String
	user.Image = image.String
	user.Plan = PlanFree
	if plan.Valid && Plan(plan.String) == PlanPremium {
		user.Plan = PlanPremium
	}
	user.StripeCustomerID = customerID.String
	user.StripeSubscriptionID = subscriptionID.String
	user.StripePriceID = priceID.String
	if periodEnd.Valid {
		t := periodEnd.Time
		user.StripeCurrentPeriodEnd = &t
	}
	return user, nil
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
