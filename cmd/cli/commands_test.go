package main

import (
	"context"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	grpcserver "github.com/and161185/lingua-auth/internal/server/grpc"
)

// stubServer answers the calls the CLI tests make. Other methods are nil.
type stubServer struct {
	grpcserver.AuthServer

	login  *grpcserver.LoginRequest
	bearer string
}

func (s *stubServer) Login(_ context.Context, req *grpcserver.LoginRequest) (*grpcserver.SessionResponse, error) {
	s.login = req
	return &grpcserver.SessionResponse{AccessToken: "tok", TokenType: "bearer", IsUserVerified: true}, nil
}

func (s *stubServer) RegisterEmail(_ context.Context, req *grpcserver.RegisterEmailRequest) (*grpcserver.UserResponse, error) {
	if req.Email == "taken@x.y" {
		return nil, status.Error(codes.AlreadyExists, "EmailAlreadyExists")
	}
	return &grpcserver.UserResponse{ID: 9, Email: req.Email}, nil
}

func (s *stubServer) CurrentUser(ctx context.Context, _ *grpcserver.Empty) (*grpcserver.UserResponse, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get("authorization"); len(v) > 0 {
		s.bearer = v[0]
	}
	return &grpcserver.UserResponse{ID: 9}, nil
}

func startStub(t *testing.T, srv *stubServer, bearer string) *grpcserver.AuthClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	grpcserver.RegisterAuthServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()

	opts := []grpc.DialOption{
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if bearer != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(bearerCreds{token: bearer}))
	}
	//nolint:staticcheck // DialContext is supported through 1.x; migrate when grpc.NewClient is stable
	cc, err := grpc.DialContext(context.Background(), "bufnet", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close(); gs.Stop(); _ = lis.Close() })
	return grpcserver.NewAuthClient(cc)
}

func TestParseLogin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr string
		check   func(t *testing.T, r *grpcserver.LoginRequest)
	}{
		{
			name: "email",
			args: []string{"-email", "a@b.c", "-p", "pw"},
			check: func(t *testing.T, r *grpcserver.LoginRequest) {
				require.Equal(t, "EMAIL", r.LoginType)
				require.Equal(t, "a@b.c", r.Email)
			},
		},
		{
			name: "phone lowercase type",
			args: []string{"-type", "phone", "-phone", "0969090658", "-p", "pw"},
			check: func(t *testing.T, r *grpcserver.LoginRequest) {
				require.Equal(t, "PHONE", r.LoginType)
				require.Equal(t, "0969090658", r.Phone)
			},
		},
		{
			name: "google",
			args: []string{"-type", "GOOGLE", "-id", "g1", "-token", "t"},
			check: func(t *testing.T, r *grpcserver.LoginRequest) {
				require.Equal(t, "g1", r.ID)
				require.Equal(t, "t", r.AccessToken)
			},
		},
		{name: "email without password", args: []string{"-email", "a@b.c"}, wantErr: "need -email and -p"},
		{name: "facebook without token", args: []string{"-type", "FACEBOOK", "-id", "f"}, wantErr: "need -id and -token"},
		{name: "unknown type", args: []string{"-type", "TELEGRAM"}, wantErr: "unknown login type"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r, err := parseLogin(tc.args)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			tc.check(t, r)
		})
	}
}

func TestLookupCommand(t *testing.T) {
	t.Parallel()

	for _, name := range []string{
		"register-email", "register-phone", "login", "logout", "verify-email", "verify-phone",
		"refresh-email", "refresh-phone", "forgot-email", "forgot-phone", "reset", "whoami", "check",
	} {
		_, ok := lookupCommand(name)
		require.True(t, ok, name)
	}
	_, ok := lookupCommand("add-card")
	require.False(t, ok)

	whoami, _ := lookupCommand("whoami")
	require.True(t, whoami.auth)
	login, _ := lookupCommand("login")
	require.False(t, login.auth)

	require.True(t, strings.Contains(commandHelp(), "verify-phone"))
}

func TestCommands_OverGRPC(t *testing.T) {
	srv := &stubServer{}
	c := startStub(t, srv, "")
	ctx := context.Background()

	out, err := cmdLogin(ctx, c, []string{"-type", "PHONE", "-phone", "0969090658", "-p", "pw"})
	require.NoError(t, err)
	sess, ok := out.(*grpcserver.SessionResponse)
	require.True(t, ok)
	require.Equal(t, "tok", sess.AccessToken)
	require.Equal(t, "PHONE", srv.login.LoginType)

	out, err = cmdRegisterEmail(ctx, c, []string{"-email", "new@x.y", "-p", "pw"})
	require.NoError(t, err)
	require.Equal(t, "new@x.y", out.(*grpcserver.UserResponse).Email)

	_, err = cmdRegisterEmail(ctx, c, []string{"-email", "taken@x.y", "-p", "pw"})
	require.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = cmdRegisterEmail(ctx, c, []string{"-email", "x@y.z"})
	require.ErrorContains(t, err, "need -email and -p")
}

func TestCommands_SendBearer(t *testing.T) {
	srv := &stubServer{}
	c := startStub(t, srv, "saved-token")

	out, err := cmdWhoami(context.Background(), c, nil)
	require.NoError(t, err)
	require.Equal(t, int64(9), out.(*grpcserver.UserResponse).ID)
	require.Equal(t, "Bearer saved-token", srv.bearer)
}
