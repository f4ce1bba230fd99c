package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/lingua-auth/internal/errs"
	"github.com/and161185/lingua-auth/internal/kv"
	"github.com/and161185/lingua-auth/internal/limiter"
	"github.com/and161185/lingua-auth/internal/model"
)

func TestPhoneRegistrationEndToEnd(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, err := h.svc.RegisterPhone(ctx, "0969090658", "secret")
	require.NoError(t, err)
	require.False(t, u.IsPhoneVerified)

	pin := h.notifier.last(t, "verify-pin")
	phone, ok, err := h.svc.verify.Read(ctx, pin)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "0969090658", phone)

	s, err := h.svc.VerifyPhone(ctx, pin)
	require.NoError(t, err)
	require.NotEmpty(t, s.AccessToken)
	require.True(t, s.IsUserVerified)

	got, err := h.users.GetByPhone(ctx, "0969090658")
	require.NoError(t, err)
	require.True(t, got.IsPhoneVerified)

	claims, err := h.signer.Validate(s.AccessToken, audCreate)
	require.NoError(t, err)
	require.Equal(t, "0969090658", claims.Phone)

	_, err = h.svc.VerifyPhone(ctx, pin)
	require.ErrorIs(t, err, errs.ErrInvalidVerifyToken)
}

func TestVerifyEmail_NotIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.RegisterEmail(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	token := h.notifier.last(t, "verify-email")

	s, err := h.svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	require.True(t, s.IsUserVerified)

	_, err = h.svc.VerifyEmail(ctx, token)
	require.ErrorIs(t, err, errs.ErrInvalidVerifyToken)

	// a token that survived deletion still cannot verify twice
	require.NoError(t, h.store.Set(ctx, "verify_token:"+token, "a@b.c", time.Hour))
	_, err = h.svc.VerifyEmail(ctx, token)
	require.ErrorIs(t, err, errs.ErrUserAlreadyVerified)
}

func TestVerifyEmail_UnknownUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, "verify_token:tok", "ghost@b.c", time.Hour))
	_, err := h.svc.VerifyEmail(ctx, "tok")
	require.ErrorIs(t, err, errs.ErrUserNotExists)

	_, err = h.svc.VerifyPhone(ctx, "")
	require.ErrorIs(t, err, errs.ErrInvalidVerifyToken)
}

// flakyDeletes fails every Delete; other calls hit the wrapped store.
type flakyDeletes struct{ kv.Store }

func (flakyDeletes) Delete(context.Context, string) error { return errors.New("store down") }

func TestVerifyEmail_CleanupFailureIsSwallowed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.RegisterEmail(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	token := h.notifier.last(t, "verify-email")

	h.svc.lim = limiter.NewKV(flakyDeletes{h.store}, 10, time.Hour)
	s, err := h.svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	require.True(t, s.IsUserVerified)
}

func TestVerify_ResetsRefreshCount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u, err := h.svc.RegisterEmail(ctx, "a@b.c", "pw")
	require.NoError(t, err)

	require.NoError(t, h.svc.RefreshEmailToken(ctx, u))
	require.NoError(t, h.svc.RefreshEmailToken(ctx, u))
	count, _, err := h.svc.lim.Allow(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	_, err = h.svc.VerifyEmail(ctx, h.notifier.last(t, "verify-email"))
	require.NoError(t, err)
	count, _, err = h.svc.lim.Allow(ctx, u.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestRefreshEmailToken_Limit(t *testing.T) {
	const limit = 10
	h := newHarness(t)
	ctx := context.Background()
	u, err := h.svc.RegisterEmail(ctx, "a@b.c", "pw")
	require.NoError(t, err)

	for i := 0; i < limit; i++ {
		require.NoError(t, h.svc.RefreshEmailToken(ctx, u), "refresh %d", i+1)
	}
	err = h.svc.RefreshEmailToken(ctx, u)
	require.ErrorIs(t, err, errs.ErrRefreshCountLimitExceeded)
	require.Equal(t, 1+limit, h.notifier.count("verify-email"))
}

func TestRefreshPhoneToken_LimitFromConfig(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.svc.lim = limiter.NewKV(h.store, 2, time.Hour)
	u, err := h.svc.RegisterPhone(ctx, "0969090658", "pw")
	require.NoError(t, err)

	require.NoError(t, h.svc.RefreshPhoneToken(ctx, u))
	require.NoError(t, h.svc.RefreshPhoneToken(ctx, u))
	require.ErrorIs(t, h.svc.RefreshPhoneToken(ctx, u), errs.ErrRefreshCountLimitExceeded)
}

func TestRefresh_AlreadyVerified(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.ErrorIs(t, h.svc.RefreshEmailToken(ctx, &model.User{ID: 1, IsEmailVerified: true}), errs.ErrUserAlreadyVerified)
	require.ErrorIs(t, h.svc.RefreshPhoneToken(ctx, &model.User{ID: 1, IsPhoneVerified: true}), errs.ErrUserAlreadyVerified)
	require.ErrorIs(t, h.svc.RefreshPhoneToken(ctx, &model.User{ID: 1}), errs.ErrEmailOrPhoneRequired)
}

func TestRefresh_DeliveryFailureRollsBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u, err := h.svc.RegisterEmail(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	require.NoError(t, h.svc.RefreshEmailToken(ctx, u))
	entries := h.store.Len()

	h.notifier.err = errs.ErrEmailSendFailed
	err = h.svc.RefreshEmailToken(ctx, u)
	require.ErrorIs(t, err, errs.ErrEmailSendFailed)

	count, _, err := h.svc.lim.Allow(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count, "count must be restored")
	require.Equal(t, entries, h.store.Len(), "new token must be discarded")

	// first refresh failing leaves no count behind
	h2 := newHarness(t)
	u2, err := h2.svc.RegisterEmail(ctx, "x@y.z", "pw")
	require.NoError(t, err)
	h2.notifier.err = errs.ErrEmailSendFailed
	require.Error(t, h2.svc.RefreshEmailToken(ctx, u2))
	_, ok, err := h2.store.Get(ctx, "refresh_count:1")
	require.NoError(t, err)
	require.False(t, ok)
}
