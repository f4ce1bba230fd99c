// Package signer mints and validates signed session tokens (JWT) bound to an audience.
package signer

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/and161185/lingua-auth/internal/errs"
	"github.com/and161185/lingua-auth/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

const day = 24 * time.Hour

// tokenClaims is the wire payload: identity claims plus reserved aud/exp.
type tokenClaims struct {
	model.Claims
	jwt.RegisteredClaims
}

// Signer issues and validates tokens with a process-wide secret and algorithm.
type Signer struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// New returns a Signer for an HMAC algorithm name such as "HS256".
func New(secret, algorithm string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("signer: empty secret")
	}
	m := jwt.GetSigningMethod(algorithm)
	if _, ok := m.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signer: unsupported algorithm %q", algorithm)
	}
	return &Signer{secret: []byte(secret), method: m, now: time.Now}, nil
}

// WithClock replaces the time source used for issuance and expiry checks.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	cp := *s
	cp.now = now
	return &cp
}

// Issue signs claims for audience. A positive lifetimeDays sets an absolute
// expiry; zero leaves the token without an exp claim. Every token carries a
// fresh jti, so two tokens for the same claims never collide.
func (s *Signer) Issue(claims model.Claims, audience string, lifetimeDays int) (string, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("signer: token id: %w", err)
	}
	now := s.now()
	tc := tokenClaims{
		Claims: claims,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       jti.String(),
			Audience: jwt.ClaimStrings{audience},
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if lifetimeDays > 0 {
		tc.ExpiresAt = jwt.NewNumericDate(now.Add(time.Duration(lifetimeDays) * day))
	}
	return jwt.NewWithClaims(s.method, tc).SignedString(s.secret)
}

// Validate checks signature, expiry and that the token audience is one of audiences.
// Every failure is reported as errs.ErrInvalidToken.
func (s *Signer) Validate(token string, audiences ...string) (model.Claims, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return model.Claims{}, fmt.Errorf("%w: %v", errs.ErrInvalidToken, err)
	}
	if !audienceAllowed(tc.Audience, audiences) {
		return model.Claims{}, fmt.Errorf("%w: audience mismatch", errs.ErrInvalidToken)
	}
	return tc.Claims, nil
}

func audienceAllowed(got jwt.ClaimStrings, allowed []string) bool {
	for _, a := range got {
		if slices.Contains(allowed, a) {
			return true
		}
	}
	return false
}
