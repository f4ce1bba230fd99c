// Package tokenstore keeps short-lived verify, reset and session tokens in a kv.Store.
// Each store owns its key prefix and lifetime.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/lingua-auth/internal/crypto"
	"github.com/and161185/lingua-auth/internal/errs"
	"github.com/and161185/lingua-auth/internal/kv"
	"github.com/and161185/lingua-auth/internal/model"
)

// Defaults shared by the stores.
const (
	DefaultLifetime = 24 * time.Hour
	PinDigits       = 6
	PinAttempts     = 50

	verifyPrefix  = "verify_token:"
	resetPrefix   = "reset_session_token:"
	sessionPrefix = "user_session_token:"

	tokenBytes = 32
)

// VerifyTokens maps an email token or a phone PIN to the address being verified.
type VerifyTokens struct {
	store    kv.Store
	prefix   string
	lifetime time.Duration
}

// NewVerifyTokens returns a verify token store with the default prefix and lifetime.
func NewVerifyTokens(store kv.Store) *VerifyTokens {
	return &VerifyTokens{store: store, prefix: verifyPrefix, lifetime: DefaultLifetime}
}

func (v *VerifyTokens) key(token string) string { return v.prefix + token }

// WriteEmailToken stores a fresh opaque token for u's email.
func (v *VerifyTokens) WriteEmailToken(ctx context.Context, u *model.User) (string, error) {
	email := model.Deref(u.Email)
	if email == "" {
		return "", errors.New("email is required")
	}
	token, err := crypto.RandToken(tokenBytes)
	if err != nil {
		return "", err
	}
	if err := v.store.Set(ctx, v.key(token), email, v.lifetime); err != nil {
		return "", err
	}
	return token, nil
}

// WritePhonePIN claims an unused 6-digit PIN for u's phone using SET NX.
// It draws at most PinAttempts PINs before failing with errs.ErrPinExhausted.
func (v *VerifyTokens) WritePhonePIN(ctx context.Context, u *model.User) (string, error) {
	phone := model.Deref(u.Phone)
	if phone == "" {
		return "", errors.New("phone is required")
	}
	for i := 0; i < PinAttempts; i++ {
		pin, err := crypto.RandDigits(PinDigits)
		if err != nil {
			return "", err
		}
		ok, err := v.store.SetNX(ctx, v.key(pin), phone, v.lifetime)
		if err != nil {
			return "", err
		}
		if ok {
			return pin, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", errs.ErrPinExhausted, PinAttempts)
}

// Read returns the email or phone bound to token.
func (v *VerifyTokens) Read(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	return v.store.Get(ctx, v.key(token))
}

// Destroy removes token.
func (v *VerifyTokens) Destroy(ctx context.Context, token string) error {
	return v.store.Delete(ctx, v.key(token))
}
