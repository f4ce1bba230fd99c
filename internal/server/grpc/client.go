package grpcserver

import (
	"context"

	"google.golang.org/grpc"
)

// AuthClient calls the Auth service over the JSON codec.
type AuthClient struct {
	cc grpc.ClientConnInterface
}

// NewAuthClient wraps a client connection.
func NewAuthClient(cc grpc.ClientConnInterface) *AuthClient { return &AuthClient{cc: cc} }

func invoke[Resp any](ctx context.Context, c *AuthClient, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthClient) RegisterEmail(ctx context.Context, in *RegisterEmailRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, "RegisterEmail", in, opts)
}

func (c *AuthClient) RegisterPhone(ctx context.Context, in *RegisterPhoneRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, "RegisterPhone", in, opts)
}

func (c *AuthClient) RegisterFacebook(ctx context.Context, in *RegisterSocialRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, "RegisterFacebook", in, opts)
}

func (c *AuthClient) RegisterGoogle(ctx context.Context, in *RegisterSocialRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, "RegisterGoogle", in, opts)
}

func (c *AuthClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c, "Login", in, opts)
}

func (c *AuthClient) Logout(ctx context.Context, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "Logout", &Empty{}, opts)
}

func (c *AuthClient) ForgotPasswordEmail(ctx context.Context, in *ForgotPasswordEmailRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "ForgotPasswordEmail", in, opts)
}

func (c *AuthClient) ForgotPasswordPhone(ctx context.Context, in *ForgotPasswordPhoneRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "ForgotPasswordPhone", in, opts)
}

func (c *AuthClient) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "ResetPassword", in, opts)
}

func (c *AuthClient) VerifyEmail(ctx context.Context, in *VerifyEmailRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c, "VerifyEmail", in, opts)
}

func (c *AuthClient) VerifyPhone(ctx context.Context, in *VerifyPhoneRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c, "VerifyPhone", in, opts)
}

func (c *AuthClient) RefreshEmailToken(ctx context.Context, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "RefreshEmailToken", &Empty{}, opts)
}

func (c *AuthClient) RefreshPhoneToken(ctx context.Context, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "RefreshPhoneToken", &Empty{}, opts)
}

func (c *AuthClient) CurrentUser(ctx context.Context, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, "CurrentUser", &Empty{}, opts)
}

func (c *AuthClient) CheckVerification(ctx context.Context, opts ...grpc.CallOption) (*CheckVerificationResponse, error) {
	return invoke[CheckVerificationResponse](ctx, c, "CheckVerification", &Empty{}, opts)
}
