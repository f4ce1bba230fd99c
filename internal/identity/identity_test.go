package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	fb "github.com/huandu/facebook/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/api/idtoken"

	"github.com/and161185/lingua-auth/internal/errs"
)

type fakeInspector map[string]fb.Result

func (f fakeInspector) Inspect(_ context.Context, token string) (fb.Result, error) {
	if token == "boom" {
		return nil, errors.New("graph unavailable")
	}
	if r, ok := f[token]; ok {
		return r, nil
	}
	return fb.Result{"is_valid": false}, nil
}

func TestFacebook(t *testing.T) {
	f := NewFacebookWithInspector(fakeInspector{
		"good": {"app_id": "app", "is_valid": true, "user_id": "fb-1"},
	}, zaptest.NewLogger(t))
	ctx := context.Background()

	ok, err := f.IsValidAccessToken(ctx, "fb-1", "good")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.IsValidAccessToken(ctx, "fb-2", "good")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = f.IsValidAccessToken(ctx, "fb-1", "expired")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = f.IsValidAccessToken(ctx, "fb-1", "boom")
	require.Error(t, err)

	id, err := f.ProviderID(ctx, "good")
	require.NoError(t, err)
	require.Equal(t, "fb-1", id)

	_, err = f.ProviderID(ctx, "expired")
	require.ErrorIs(t, err, errs.ErrInvalidFacebookAccessToken)
	_, err = f.ProviderID(ctx, "boom")
	require.ErrorIs(t, err, errs.ErrInvalidFacebookAccessToken)
}

func TestNewFacebook_RequiresCredentials(t *testing.T) {
	_, err := NewFacebook("", "secret", nil, nil)
	require.Error(t, err)
	_, err = NewFacebook("app", "", nil, nil)
	require.Error(t, err)
}

// rewriteTransport sends every request to target, keeping path and query.
type rewriteTransport struct{ target *url.URL }

func (rt rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func TestFacebook_GraphDebugToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/debug_token"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("input_token") {
		case "good":
			_, _ = w.Write([]byte(`{"data":{"app_id":"app","is_valid":true,"user_id":"fb-1"}}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"bad token","type":"OAuthException","code":190}}`))
		}
	}))
	defer srv.Close()
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	f, err := NewFacebook("app", "secret", &http.Client{Transport: rewriteTransport{target: target}}, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := f.IsValidAccessToken(ctx, "fb-1", "good")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.ProviderID(ctx, "revoked")
	require.ErrorIs(t, err, errs.ErrInvalidFacebookAccessToken)
}

type fakeValidator struct {
	t        *testing.T
	audience string
	subjects map[string]string
}

func (v fakeValidator) Validate(_ context.Context, token, audience string) (*idtoken.Payload, error) {
	require.Equal(v.t, v.audience, audience)
	sub, ok := v.subjects[token]
	if !ok {
		return nil, errors.New("idtoken: invalid token")
	}
	return &idtoken.Payload{Subject: sub, Audience: audience}, nil
}

func TestGoogle(t *testing.T) {
	g, err := NewGoogleWithValidator(fakeValidator{
		t:        t,
		audience: "client",
		subjects: map[string]string{"good": "g-1", "no-sub": ""},
	}, "client", nil)
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := g.IsValidAccessToken(ctx, "g-1", "good")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = g.IsValidAccessToken(ctx, "g-2", "good")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = g.IsValidAccessToken(ctx, "g-1", "bad")
	require.ErrorIs(t, err, errs.ErrInvalidGoogleAccessToken)

	_, err = g.ProviderID(ctx, "no-sub")
	require.ErrorIs(t, err, errs.ErrInvalidGoogleAccessToken)

	id, err := g.ProviderID(ctx, "good")
	require.NoError(t, err)
	require.Equal(t, "g-1", id)
}

func TestNewGoogle_RequiresClientID(t *testing.T) {
	_, err := NewGoogleWithValidator(fakeValidator{t: t}, "", nil)
	require.Error(t, err)

	_, err = NewGoogle(context.Background(), "", nil, nil)
	require.Error(t, err)
}

func TestLocal(t *testing.T) {
	ok, err := Local{}.IsValidAccessToken(context.Background(), "x", "y")
	require.NoError(t, err)
	require.True(t, ok)
	id, err := Local{}.ProviderID(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "tok", id)
}
