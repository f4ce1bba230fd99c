// Package limiter rate-limits verification token reissue per user.
package limiter

import (
	"context"
	"time"
)

// Limiter tracks how many times a user re-requested a verification token
// within a time window.
type Limiter interface {
	// Allow returns the current count and whether another reissue is allowed.
	Allow(ctx context.Context, userID int64) (count int, allowed bool, err error)
	// Record persists count for the user and restarts the window.
	Record(ctx context.Context, userID int64, count int) error
	// Reset clears the user's count.
	Reset(ctx context.Context, userID int64) error
}

// DefaultLimit is the number of reissues allowed per window.
const DefaultLimit = 10

// DefaultWindow is the lifetime of a stored count.
const DefaultWindow = 24 * time.Hour
