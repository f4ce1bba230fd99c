package tokenstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/and161185/lingua-auth/internal/errs"
	"github.com/and161185/lingua-auth/internal/kv"
	"github.com/and161185/lingua-auth/internal/model"
	"github.com/and161185/lingua-auth/internal/signer"
	"github.com/stretchr/testify/require"
)

// collidingStore reports "already exists" for the first n SetNX calls.
type collidingStore struct {
	*kv.Memory
	collisions int
	calls      int
	keys       []string
}

func (c *collidingStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	c.calls++
	c.keys = append(c.keys, key)
	if c.calls <= c.collisions {
		return false, nil
	}
	return c.Memory.SetNX(ctx, key, value, ttl)
}

func TestVerifyTokens_EmailRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	vt := NewVerifyTokens(kv.NewMemory())

	_, err := vt.WriteEmailToken(ctx, &model.User{ID: 1})
	require.Error(t, err)

	u := &model.User{ID: 1, Email: model.Str("a@example.com")}
	tok, err := vt.WriteEmailToken(ctx, u)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	email, ok, err := vt.Read(ctx, tok)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a@example.com", email)

	require.NoError(t, vt.Destroy(ctx, tok))
	_, ok, err = vt.Read(ctx, tok)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = vt.Read(ctx, "")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyTokens_PINExpiresAfter24h(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	vt := NewVerifyTokens(kv.NewMemory().WithClock(func() time.Time { return now }))

	pin, err := vt.WritePhonePIN(ctx, &model.User{ID: 2, Phone: model.Str("0969090658")})
	require.NoError(t, err)
	require.Len(t, pin, PinDigits)

	now = now.Add(23 * time.Hour)
	phone, ok, _ := vt.Read(ctx, pin)
	require.True(t, ok)
	require.Equal(t, "0969090658", phone)

	now = now.Add(2 * time.Hour)
	_, ok, _ = vt.Read(ctx, pin)
	require.False(t, ok)
}

func TestVerifyTokens_PINCollisions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	u := &model.User{ID: 3, Phone: model.Str("0969090658")}

	cs := &collidingStore{Memory: kv.NewMemory(), collisions: PinAttempts - 1}
	pin, err := NewVerifyTokens(cs).WritePhonePIN(ctx, u)
	require.NoError(t, err)
	require.Equal(t, PinAttempts, cs.calls)
	require.Equal(t, verifyPrefix+pin, cs.keys[len(cs.keys)-1])

	cs = &collidingStore{Memory: kv.NewMemory(), collisions: PinAttempts}
	_, err = NewVerifyTokens(cs).WritePhonePIN(ctx, u)
	require.ErrorIs(t, err, errs.ErrPinExhausted)
	require.Equal(t, PinAttempts, cs.calls)

	_, err = NewVerifyTokens(kv.NewMemory()).WritePhonePIN(ctx, &model.User{ID: 4})
	require.Error(t, err)
}

type failingStore struct{ kv.Store }

func (failingStore) SetNX(context.Context, string, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func TestVerifyTokens_PINStoreErrorStopsRetries(t *testing.T) {
	t.Parallel()
	_, err := NewVerifyTokens(failingStore{kv.NewMemory()}).
		WritePhonePIN(context.Background(), &model.User{ID: 1, Phone: model.Str("1")})
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrPinExhausted)
}

func TestResetTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := kv.NewMemory()
	rt := NewResetTokens(mem)

	tok, err := rt.Write(ctx, 42)
	require.NoError(t, err)
	id, ok, err := rt.Read(ctx, tok)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(42), id)

	require.NoError(t, mem.Set(ctx, resetPrefix+"junk", "not-a-number", 0))
	_, ok, err = rt.Read(ctx, "junk")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, rt.Destroy(ctx, tok))
	_, ok, _ = rt.Read(ctx, tok)
	require.False(t, ok)
}

func TestSessions_WriteReadDestroy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }

	sg, err := signer.New("secret", "HS256")
	require.NoError(t, err)
	sg = sg.WithClock(clock)
	s := NewSessions(kv.NewMemory().WithClock(clock), sg, "lingua:create", 180)

	u := &model.User{ID: 9, Email: model.Str("a@example.com")}
	tok, err := s.Write(ctx, u, model.LoginEmail)
	require.NoError(t, err)

	claims, err := sg.Validate(tok, "lingua:create")
	require.NoError(t, err)
	require.Equal(t, "a@example.com", claims.Email)
	require.Equal(t, "9", claims.UserID)

	id, ok, err := s.Read(ctx, tok)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(9), id)

	now = now.Add(181 * 24 * time.Hour)
	_, ok, _ = s.Read(ctx, tok)
	require.False(t, ok, "session record must expire with the signature")

	now = time.Unix(1_700_000_000, 0)
	tok2, err := s.Write(ctx, u, model.LoginEmail)
	require.NoError(t, err)
	require.NoError(t, s.Destroy(ctx, tok2))
	require.NoError(t, s.Destroy(ctx, tok2))
	_, ok, _ = s.Read(ctx, tok2)
	require.False(t, ok)
}
