package tokenstore

import (
	"context"
	"strconv"
	"time"

	"github.com/and161185/lingua-auth/internal/crypto"
	"github.com/and161185/lingua-auth/internal/kv"
)

// ResetTokens maps an opaque password reset token to a user id.
type ResetTokens struct {
	store    kv.Store
	prefix   string
	lifetime time.Duration
}

// NewResetTokens returns a reset token store with the default prefix and lifetime.
func NewResetTokens(store kv.Store) *ResetTokens {
	return &ResetTokens{store: store, prefix: resetPrefix, lifetime: DefaultLifetime}
}

// Write stores a fresh token for userID.
func (r *ResetTokens) Write(ctx context.Context, userID int64) (string, error) {
	token, err := crypto.RandToken(tokenBytes)
	if err != nil {
		return "", err
	}
	if err := r.store.Set(ctx, r.prefix+token, strconv.FormatInt(userID, 10), r.lifetime); err != nil {
		return "", err
	}
	return token, nil
}

// Read returns the user id bound to token. Unparseable values read as absent.
func (r *ResetTokens) Read(ctx context.Context, token string) (int64, bool, error) {
	if token == "" {
		return 0, false, nil
	}
	v, ok, err := r.store.Get(ctx, r.prefix+token)
	if err != nil || !ok {
		return 0, false, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return id, true, nil
}

// Destroy removes token.
func (r *ResetTokens) Destroy(ctx context.Context, token string) error {
	return r.store.Delete(ctx, r.prefix+token)
}
