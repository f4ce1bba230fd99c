package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/and161185/lingua-auth/internal/errs"
	"github.com/and161185/lingua-auth/internal/model"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements repository.UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, COALESCE(user_code, ''), hashed_password, sex_code, name,
email, phone, facebook_id, facebook_access_token, google_id, google_access_token,
is_email_verified, is_phone_verified, is_facebook_verified, is_google_verified,
created_at, updated_at, deleted_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.UserCode, &u.HashedPassword, &u.SexCode, &u.Name,
		&u.Email, &u.Phone, &u.FacebookID, &u.FacebookAccessToken, &u.GoogleID, &u.GoogleAccessToken,
		&u.IsEmailVerified, &u.IsPhoneVerified, &u.IsFacebookVerified, &u.IsGoogleVerified,
		&u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// Create inserts a new user row and fills in ID, CreatedAt and UpdatedAt.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (user_code, hashed_password, sex_code, name,
  email, phone, facebook_id, facebook_access_token, google_id, google_access_token,
  is_email_verified, is_phone_verified, is_facebook_verified, is_google_verified)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING id, created_at, updated_at`
	if u.SexCode == "" {
		u.SexCode = model.SexNotKnown
	}
	row := r.db.conn(ctx).QueryRow(ctx, q,
		model.Str(u.UserCode), u.HashedPassword, u.SexCode, u.Name,
		u.Email, u.Phone, u.FacebookID, u.FacebookAccessToken, u.GoogleID, u.GoogleAccessToken,
		u.IsEmailVerified, u.IsPhoneVerified, u.IsFacebookVerified, u.IsGoogleVerified,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Update writes every mutable column of u and refreshes UpdatedAt.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	const q = `
UPDATE users SET
  user_code = $2, hashed_password = $3, sex_code = $4, name = $5,
  email = $6, phone = $7, facebook_id = $8, facebook_access_token = $9,
  google_id = $10, google_access_token = $11,
  is_email_verified = $12, is_phone_verified = $13,
  is_facebook_verified = $14, is_google_verified = $15,
  deleted_at = $16, updated_at = now()
WHERE id = $1
RETURNING updated_at`
	row := r.db.conn(ctx).QueryRow(ctx, q, u.ID,
		model.Str(u.UserCode), u.HashedPassword, u.SexCode, u.Name,
		u.Email, u.Phone, u.FacebookID, u.FacebookAccessToken,
		u.GoogleID, u.GoogleAccessToken,
		u.IsEmailVerified, u.IsPhoneVerified,
		u.IsFacebookVerified, u.IsGoogleVerified,
		u.DeletedAt,
	)
	if err := row.Scan(&u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrUserNotExists
		}
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return nil
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(r.db.conn(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.conn(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetByPhone selects a user by phone number.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	return scanUser(r.db.conn(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone))
}

// GetByFacebookID selects a user by Facebook account id.
func (r *UserRepo) GetByFacebookID(ctx context.Context, facebookID string) (*model.User, error) {
	return scanUser(r.db.conn(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE facebook_id = $1`, facebookID))
}

// GetByGoogleID selects a user by Google account id.
func (r *UserRepo) GetByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return scanUser(r.db.conn(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = $1`, googleID))
}

// GetByUserCode selects a user by public user code.
func (r *UserRepo) GetByUserCode(ctx context.Context, userCode string) (*model.User, error) {
	return scanUser(r.db.conn(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_code = $1`, userCode))
}
