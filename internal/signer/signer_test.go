package signer

import (
	"testing"
	"time"

	"github.com/and161185/lingua-auth/internal/errs"
	"github.com/and161185/lingua-auth/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	audCreate = "lingua:create"
	audVerify = "lingua:verify"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newSigner(t *testing.T, c *clock) *Signer {
	t.Helper()
	s, err := New("test-secret", "HS256")
	require.NoError(t, err)
	return s.WithClock(c.now)
}

func TestIssueValidate_RoundTripAndExpiry(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := &clock{t: start}
	s := newSigner(t, c)

	claims := model.Claims{Email: "a@example.com", UserID: "17"}
	tok, err := s.Issue(claims, audCreate, 1)
	require.NoError(t, err)

	c.t = start.Add(23 * time.Hour)
	got, err := s.Validate(tok, audCreate)
	require.NoError(t, err)
	require.Equal(t, claims, got)

	c.t = start.Add(25 * time.Hour)
	_, err = s.Validate(tok, audCreate)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestIssue_NoLifetime_NeverExpires(t *testing.T) {
	t.Parallel()

	c := &clock{t: time.Now()}
	s := newSigner(t, c)

	tok, err := s.Issue(model.Claims{Phone: "0969090658", UserID: "1"}, audCreate, 0)
	require.NoError(t, err)

	c.t = c.t.Add(10 * 365 * 24 * time.Hour)
	got, err := s.Validate(tok, audCreate, audVerify)
	require.NoError(t, err)
	require.Equal(t, "0969090658", got.Phone)
}

func TestValidate_AudienceMismatch(t *testing.T) {
	t.Parallel()

	s := newSigner(t, &clock{t: time.Now()})
	tok, err := s.Issue(model.Claims{UserID: "1"}, audVerify, 1)
	require.NoError(t, err)

	_, err = s.Validate(tok, audCreate)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
	_, err = s.Validate(tok, audCreate, audVerify)
	require.NoError(t, err)
}

func TestValidate_BadSignatureAndGarbage(t *testing.T) {
	t.Parallel()

	c := &clock{t: time.Now()}
	s := newSigner(t, c)
	other, err := New("other-secret", "HS256")
	require.NoError(t, err)

	tok, err := other.Issue(model.Claims{UserID: "1"}, audCreate, 1)
	require.NoError(t, err)
	_, err = s.Validate(tok, audCreate)
	require.ErrorIs(t, err, errs.ErrInvalidToken)

	_, err = s.Validate("not.a.jwt", audCreate)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestValidate_RejectsOtherAlgorithm(t *testing.T) {
	t.Parallel()

	s := newSigner(t, &clock{t: time.Now()})
	tc := tokenClaims{
		Claims:           model.Claims{UserID: "1"},
		RegisteredClaims: jwt.RegisteredClaims{Audience: jwt.ClaimStrings{audCreate}},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, tc).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = s.Validate(tok, audCreate)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New("", "HS256")
	require.Error(t, err)
	_, err = New("k", "RS256")
	require.Error(t, err)
	_, err = New("k", "nope")
	require.Error(t, err)
}

func TestIssue_SameClaimsSameInstantDistinctTokens(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newSigner(t, &clock{t: now})
	claims := model.Claims{Email: "a@example.com", UserID: "17"}

	a, err := s.Issue(claims, audCreate, 180)
	require.NoError(t, err)
	b, err := s.Issue(claims, audCreate, 180)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	for _, tok := range []string{a, b} {
		got, err := s.Validate(tok, audCreate)
		require.NoError(t, err)
		require.Equal(t, claims, got)

		var tc tokenClaims
		_, _, err = jwt.NewParser().ParseUnverified(tok, &tc)
		require.NoError(t, err)
		require.NotEmpty(t, tc.ID)
		require.NotNil(t, tc.IssuedAt)
		require.True(t, tc.IssuedAt.Time.Equal(now))
	}
}
