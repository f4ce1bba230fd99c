package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	fb "github.com/huandu/facebook/v2"
	"go.uber.org/zap"

	"github.com/and161185/lingua-auth/internal/errs"
)

// TokenInspector runs the Graph API debug_token call for a user access token
// and returns its data object.
type TokenInspector interface {
	Inspect(ctx context.Context, accessToken string) (fb.Result, error)
}

// graphInspector inspects tokens with the app's credentials.
type graphInspector struct {
	app    *fb.App
	client *http.Client
}

func (g graphInspector) Inspect(ctx context.Context, accessToken string) (fb.Result, error) {
	s := g.app.Session(accessToken)
	s.HttpClient = g.client
	return s.WithContext(ctx).Inspect()
}

// Facebook checks user tokens with the Graph API debug_token endpoint.
type Facebook struct {
	inspector TokenInspector
	log       *zap.Logger
}

// NewFacebook builds a checker for the given app credentials.
func NewFacebook(appID, appSecret string, client *http.Client, log *zap.Logger) (*Facebook, error) {
	if appID == "" || appSecret == "" {
		return nil, errors.New("facebook app id and secret are required")
	}
	return NewFacebookWithInspector(graphInspector{app: fb.New(appID, appSecret), client: defaultClient(client)}, log), nil
}

// NewFacebookWithInspector wraps an existing inspector.
func NewFacebookWithInspector(i TokenInspector, log *zap.Logger) *Facebook {
	if log == nil {
		log = zap.NewNop()
	}
	return &Facebook{inspector: i, log: log}
}

type tokenData struct {
	IsValid bool   `facebook:"is_valid"`
	UserID  string `facebook:"user_id"`
}

func (f *Facebook) inspect(ctx context.Context, accessToken string) (tokenData, error) {
	var d tokenData
	res, err := f.inspector.Inspect(ctx, accessToken)
	if err != nil {
		return d, fmt.Errorf("debug_token: %w", err)
	}
	if err := res.Decode(&d); err != nil {
		return d, fmt.Errorf("decode debug_token: %w", err)
	}
	return d, nil
}

// IsValidAccessToken implements Checker.
func (f *Facebook) IsValidAccessToken(ctx context.Context, facebookID, accessToken string) (bool, error) {
	d, err := f.inspect(ctx, accessToken)
	if err != nil {
		return false, err
	}
	if !d.IsValid {
		f.log.Warn("facebook token not valid")
		return false, nil
	}
	if d.UserID != facebookID {
		f.log.Warn("different facebook id",
			zap.String("facebook_id", facebookID),
			zap.String("token_user_id", d.UserID))
		return false, nil
	}
	return true, nil
}

// ProviderID implements Checker.
func (f *Facebook) ProviderID(ctx context.Context, accessToken string) (string, error) {
	d, err := f.inspect(ctx, accessToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInvalidFacebookAccessToken, err)
	}
	if !d.IsValid || d.UserID == "" {
		return "", errs.ErrInvalidFacebookAccessToken
	}
	return d.UserID, nil
}
