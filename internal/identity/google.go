package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"github.com/and161185/lingua-auth/internal/errs"
)

// IDTokenValidator verifies a Google ID token for an audience.
// It is implemented by *idtoken.Validator.
type IDTokenValidator interface {
	Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

// Google checks Google ID tokens locally: signature against Google's published
// keys, issuer, expiry and audience.
type Google struct {
	validator IDTokenValidator
	clientID  string
	log       *zap.Logger
}

// NewGoogle builds a checker for tokens minted for clientID.
func NewGoogle(ctx context.Context, clientID string, client *http.Client, log *zap.Logger) (*Google, error) {
	v, err := idtoken.NewValidator(ctx, option.WithHTTPClient(defaultClient(client)))
	if err != nil {
		return nil, fmt.Errorf("google id token validator: %w", err)
	}
	return NewGoogleWithValidator(v, clientID, log)
}

// NewGoogleWithValidator wraps an existing validator. clientID is required:
// an empty audience would accept tokens minted for any app.
func NewGoogleWithValidator(v IDTokenValidator, clientID string, log *zap.Logger) (*Google, error) {
	if clientID == "" {
		return nil, errors.New("google client id is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Google{validator: v, clientID: clientID, log: log}, nil
}

// subject returns the token subject. Any failure is ErrInvalidGoogleAccessToken.
func (g *Google) subject(ctx context.Context, idToken string) (string, error) {
	p, err := g.validator.Validate(ctx, idToken, g.clientID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInvalidGoogleAccessToken, err)
	}
	if p.Subject == "" {
		return "", errs.ErrInvalidGoogleAccessToken
	}
	return p.Subject, nil
}

// IsValidAccessToken implements Checker.
func (g *Google) IsValidAccessToken(ctx context.Context, googleID, accessToken string) (bool, error) {
	sub, err := g.subject(ctx, accessToken)
	if err != nil {
		return false, err
	}
	if sub != googleID {
		g.log.Warn("different google id", zap.String("google_id", googleID), zap.String("token_sub", sub))
		return false, nil
	}
	return true, nil
}

// ProviderID implements Checker.
func (g *Google) ProviderID(ctx context.Context, accessToken string) (string, error) {
	return g.subject(ctx, accessToken)
}
