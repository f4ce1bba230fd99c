package grpcserver

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/and161185/lingua-auth/internal/service"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "x-request-id"

// RequestIDUnary takes the request id from incoming metadata or mints one,
// stores it in context and echoes it in the response header.
func RequestIDUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		var id string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDHeader); len(v) > 0 {
				id = v[0]
			}
		}
		if id == "" {
			id = uuid.Must(uuid.NewV4()).String()
		}
		// fails outside a real server stream; the id is still in ctx
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))
		return next(WithRequestID(ctx, id), req)
	}
}

// LoggingUnary returns a unary server interceptor for structured logging.
func LoggingUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		code := status.Code(err)

		var remote string
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			remote = p.Addr.String()
		}

		// metadata only, never payloads
		log.Info("grpc",
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", remote),
			zap.String("request_id", RequestIDFromCtx(ctx)),
		)
		return resp, err
	}
}

// RecoverUnary returns a unary server interceptor that recovers from panics.
func RecoverUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("method", info.FullMethod),
				)
				err = status.Error(codes.Internal, "internal")
			}
		}()
		return next(ctx, req)
	}
}

// userMethods are the methods that act on the bearer's account.
var userMethods = map[string]bool{
	FullMethod("RefreshEmailToken"): true,
	FullMethod("RefreshPhoneToken"): true,
	FullMethod("CurrentUser"):       true,
}

// AuthUnary resolves the bearer token of account methods into a user and
// stores it in context. Other methods pass through untouched.
func AuthUnary(auth service.AuthService) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if !userMethods[info.FullMethod] {
			return next(ctx, req)
		}
		u, err := resolveUser(ctx, auth)
		if err != nil {
			return nil, err
		}
		return next(WithUser(ctx, u), req)
	}
}
