// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/lingua-auth/internal/model"
)

// UserRepository provides access to user accounts.
// Lookups return errs.ErrNotFound when no user matches.
type UserRepository interface {
	// Create inserts u and assigns its ID and timestamps.
	Create(ctx context.Context, u *model.User) error
	// Update persists every mutable field of u; fails errs.ErrUserNotExists when u.ID is unknown.
	Update(ctx context.Context, u *model.User) error

	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	GetByFacebookID(ctx context.Context, facebookID string) (*model.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	GetByUserCode(ctx context.Context, userCode string) (*model.User, error)
}

// Transactor runs fn inside one logical transaction.
// The transaction is rolled back when fn returns an error and committed otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
