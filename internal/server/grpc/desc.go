package grpcserver

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "lingua.auth.v1.Auth"

// AuthServer is the server API of the Auth service.
type AuthServer interface {
	RegisterEmail(context.Context, *RegisterEmailRequest) (*UserResponse, error)
	RegisterPhone(context.Context, *RegisterPhoneRequest) (*UserResponse, error)
	RegisterFacebook(context.Context, *RegisterSocialRequest) (*UserResponse, error)
	RegisterGoogle(context.Context, *RegisterSocialRequest) (*UserResponse, error)
	Login(context.Context, *LoginRequest) (*SessionResponse, error)
	Logout(context.Context, *Empty) (*Empty, error)
	ForgotPasswordEmail(context.Context, *ForgotPasswordEmailRequest) (*Empty, error)
	ForgotPasswordPhone(context.Context, *ForgotPasswordPhoneRequest) (*Empty, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*Empty, error)
	VerifyEmail(context.Context, *VerifyEmailRequest) (*SessionResponse, error)
	VerifyPhone(context.Context, *VerifyPhoneRequest) (*SessionResponse, error)
	RefreshEmailToken(context.Context, *Empty) (*Empty, error)
	RefreshPhoneToken(context.Context, *Empty) (*Empty, error)
	CurrentUser(context.Context, *Empty) (*UserResponse, error)
	CheckVerification(context.Context, *Empty) (*CheckVerificationResponse, error)
}

// FullMethod returns the "/service/method" path of a method.
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

func unary[Req, Resp any](name string, call func(AuthServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AuthServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AuthServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// AuthServiceDesc describes the Auth service for grpc.Server.RegisterService.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("RegisterEmail", AuthServer.RegisterEmail),
		unary("RegisterPhone", AuthServer.RegisterPhone),
		unary("RegisterFacebook", AuthServer.RegisterFacebook),
		unary("RegisterGoogle", AuthServer.RegisterGoogle),
		unary("Login", AuthServer.Login),
		unary("Logout", AuthServer.Logout),
		unary("ForgotPasswordEmail", AuthServer.ForgotPasswordEmail),
		unary("ForgotPasswordPhone", AuthServer.ForgotPasswordPhone),
		unary("ResetPassword", AuthServer.ResetPassword),
		unary("VerifyEmail", AuthServer.VerifyEmail),
		unary("VerifyPhone", AuthServer.VerifyPhone),
		unary("RefreshEmailToken", AuthServer.RefreshEmailToken),
		unary("RefreshPhoneToken", AuthServer.RefreshPhoneToken),
		unary("CurrentUser", AuthServer.CurrentUser),
		unary("CheckVerification", AuthServer.CheckVerification),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lingua/auth/v1/auth.proto",
}

// RegisterAuthServer registers srv on s.
func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}
