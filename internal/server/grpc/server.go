// Package grpcserver exposes the account API over gRPC.
package grpcserver

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/and161185/lingua-auth/internal/model"
	"github.com/and161185/lingua-auth/internal/service"
)

// Server wires the account service into gRPC handlers.
type Server struct {
	auth service.AuthService
}

var _ AuthServer = (*Server)(nil)

// New constructs a gRPC server with injected services.
func New(auth service.AuthService) *Server {
	return &Server{auth: auth}
}

// --- Registration ---

func (s *Server) RegisterEmail(ctx context.Context, req *RegisterEmailRequest) (*UserResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "empty email/password")
	}
	u, err := s.auth.RegisterEmail(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return toUserResponse(u), nil
}

func (s *Server) RegisterPhone(ctx context.Context, req *RegisterPhoneRequest) (*UserResponse, error) {
	if req.Phone == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "empty phone/password")
	}
	u, err := s.auth.RegisterPhone(ctx, req.Phone, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return toUserResponse(u), nil
}

func (s *Server) RegisterFacebook(ctx context.Context, req *RegisterSocialRequest) (*UserResponse, error) {
	u, err := s.auth.RegisterFacebook(ctx, model.SocialCredentials{ProviderID: req.ID, AccessToken: req.AccessToken})
	if err != nil {
		return nil, toStatus(err)
	}
	return toUserResponse(u), nil
}

func (s *Server) RegisterGoogle(ctx context.Context, req *RegisterSocialRequest) (*UserResponse, error) {
	u, err := s.auth.RegisterGoogle(ctx, model.SocialCredentials{ProviderID: req.ID, AccessToken: req.AccessToken})
	if err != nil {
		return nil, toStatus(err)
	}
	return toUserResponse(u), nil
}

// --- Sessions ---

// Login authenticates a user through the channel named by login_type.
func (s *Server) Login(ctx context.Context, req *LoginRequest) (*SessionResponse, error) {
	lr := req.toModel()
	if !lr.Type.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown login_type %q", req.LoginType)
	}
	sess, err := s.auth.Login(ctx, lr)
	if err != nil {
		return nil, toStatus(err)
	}
	return toSessionResponse(sess), nil
}

// Logout revokes the bearer session.
func (s *Server) Logout(ctx context.Context, _ *Empty) (*Empty, error) {
	tok, err := bearerTokenFromMD(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	if err := s.auth.Logout(ctx, tok); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// --- Password reset ---

func (s *Server) ForgotPasswordEmail(ctx context.Context, req *ForgotPasswordEmailRequest) (*Empty, error) {
	if req.Email == "" {
		return nil, status.Error(codes.InvalidArgument, "empty email")
	}
	if err := s.auth.ForgotPasswordEmail(ctx, req.Email); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) ForgotPasswordPhone(ctx context.Context, req *ForgotPasswordPhoneRequest) (*Empty, error) {
	if req.Phone == "" {
		return nil, status.Error(codes.InvalidArgument, "empty phone")
	}
	if err := s.auth.ForgotPasswordPhone(ctx, req.Phone); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) ResetPassword(ctx context.Context, req *ResetPasswordRequest) (*Empty, error) {
	if req.Token == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "empty token/password")
	}
	if err := s.auth.ResetPassword(ctx, req.Token, req.Password); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// --- Verification ---

func (s *Server) VerifyEmail(ctx context.Context, req *VerifyEmailRequest) (*SessionResponse, error) {
	sess, err := s.auth.VerifyEmail(ctx, req.Token)
	if err != nil {
		return nil, toStatus(err)
	}
	return toSessionResponse(sess), nil
}

func (s *Server) VerifyPhone(ctx context.Context, req *VerifyPhoneRequest) (*SessionResponse, error) {
	sess, err := s.auth.VerifyPhone(ctx, req.Pin)
	if err != nil {
		return nil, toStatus(err)
	}
	return toSessionResponse(sess), nil
}

func (s *Server) RefreshEmailToken(ctx context.Context, _ *Empty) (*Empty, error) {
	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.RefreshEmailToken(ctx, u); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) RefreshPhoneToken(ctx context.Context, _ *Empty) (*Empty, error) {
	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.RefreshPhoneToken(ctx, u); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// --- Current user ---

func (s *Server) CurrentUser(ctx context.Context, _ *Empty) (*UserResponse, error) {
	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return toUserResponse(u), nil
}

// CheckVerification reports whether the bearer's login channel is verified.
func (s *Server) CheckVerification(ctx context.Context, _ *Empty) (*CheckVerificationResponse, error) {
	tok, err := bearerTokenFromMD(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	ok, err := s.auth.CheckVerification(ctx, tok)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CheckVerificationResponse{Verified: ok}, nil
}

// currentUser returns the user put into ctx by AuthUnary, resolving the
// bearer token itself when the interceptor is not installed.
func (s *Server) currentUser(ctx context.Context) (*model.User, error) {
	if u, ok := UserFromCtx(ctx); ok {
		return u, nil
	}
	return resolveUser(ctx, s.auth)
}

func resolveUser(ctx context.Context, auth service.AuthService) (*model.User, error) {
	tok, err := bearerTokenFromMD(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	u, err := auth.CurrentUser(ctx, tok)
	if err != nil {
		return nil, toStatus(err)
	}
	return u, nil
}

func bearerTokenFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.New("no metadata")
	}
	for _, v := range md.Get("authorization") {
		v = strings.TrimSpace(v)
		if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
			t := strings.TrimSpace(v[7:])
			if t != "" {
				return t, nil
			}
		}
	}
	return "", errors.New("no bearer token")
}
