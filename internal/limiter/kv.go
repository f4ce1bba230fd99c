package limiter

import (
	"context"
	"strconv"
	"time"

	"github.com/and161185/lingua-auth/internal/kv"
)

const countPrefix = "refresh_count:"

// KV is a kv.Store-backed limiter. Counts are read then written without
// compare-and-swap, so concurrent requests may both pass a check.
type KV struct {
	store  kv.Store
	prefix string
	limit  int
	window time.Duration
}

var _ Limiter = (*KV)(nil)

// NewKV constructs a limiter allowing limit reissues per window.
func NewKV(store kv.Store, limit int, window time.Duration) *KV {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &KV{store: store, prefix: countPrefix, limit: limit, window: window}
}

func (l *KV) key(userID int64) string { return l.prefix + strconv.FormatInt(userID, 10) }

// Allow reports whether the stored count is still below the limit.
// Missing or unparseable counts read as zero.
func (l *KV) Allow(ctx context.Context, userID int64) (int, bool, error) {
	v, ok, err := l.store.Get(ctx, l.key(userID))
	if err != nil {
		return 0, false, err
	}
	count := 0
	if ok {
		if n, perr := strconv.Atoi(v); perr == nil {
			count = n
		}
	}
	return count, count < l.limit, nil
}

// Record stores count with the window TTL.
func (l *KV) Record(ctx context.Context, userID int64, count int) error {
	return l.store.Set(ctx, l.key(userID), strconv.Itoa(count), l.window)
}

// Reset deletes the stored count.
func (l *KV) Reset(ctx context.Context, userID int64) error {
	return l.store.Delete(ctx, l.key(userID))
}
