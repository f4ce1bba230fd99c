package tokenstore

import (
	"context"
	"strconv"
	"time"

	"github.com/and161185/lingua-auth/internal/kv"
	"github.com/and161185/lingua-auth/internal/model"
)

// Issuer signs session claims.
type Issuer interface {
	Issue(claims model.Claims, audience string, lifetimeDays int) (string, error)
}

// Sessions records issued bearer tokens so they can be resolved and revoked.
// The record expires together with the token signature.
type Sessions struct {
	store        kv.Store
	issuer       Issuer
	prefix       string
	audience     string
	lifetimeDays int
}

// NewSessions returns a session store signing tokens for audience.
func NewSessions(store kv.Store, issuer Issuer, audience string, lifetimeDays int) *Sessions {
	return &Sessions{
		store:        store,
		issuer:       issuer,
		prefix:       sessionPrefix,
		audience:     audience,
		lifetimeDays: lifetimeDays,
	}
}

// Write signs a token for u on channel t and records it.
func (s *Sessions) Write(ctx context.Context, u *model.User, t model.LoginType) (string, error) {
	token, err := s.issuer.Issue(model.ClaimsFor(u, t), s.audience, s.lifetimeDays)
	if err != nil {
		return "", err
	}
	ttl := time.Duration(s.lifetimeDays) * 24 * time.Hour
	if err := s.store.Set(ctx, s.prefix+token, strconv.FormatInt(u.ID, 10), ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Read returns the user id recorded for token.
func (s *Sessions) Read(ctx context.Context, token string) (int64, bool, error) {
	if token == "" {
		return 0, false, nil
	}
	v, ok, err := s.store.Get(ctx, s.prefix+token)
	if err != nil || !ok {
		return 0, false, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return id, true, nil
}

// Destroy revokes token.
func (s *Sessions) Destroy(ctx context.Context, token string) error {
	return s.store.Delete(ctx, s.prefix+token)
}
