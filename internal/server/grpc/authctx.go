package grpcserver

import (
	"context"

	"github.com/and161185/lingua-auth/internal/model"
)

type ctxKey string

const (
	userKey      ctxKey = "la.user"
	requestIDKey ctxKey = "la.requestID"
)

// WithUser stores the authenticated user in context.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromCtx fetches the authenticated user from context.
func UserFromCtx(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// WithRequestID stores the request id in context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx fetches the request id from context.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
