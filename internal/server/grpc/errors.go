package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/and161185/lingua-auth/internal/errs"
)

type errMapping struct {
	err  error
	code codes.Code
	name string
}

// errTable maps domain sentinels to a gRPC code and a stable error name.
// The first match wins, so specific sentinels come before generic ones.
var errTable = []errMapping{
	{errs.ErrEmailAlreadyExists, codes.AlreadyExists, "EmailAlreadyExists"},
	{errs.ErrPhoneAlreadyExists, codes.AlreadyExists, "PhoneAlreadyExists"},
	{errs.ErrFacebookAccountExists, codes.AlreadyExists, "FacebookAccountAlreadyExists"},
	{errs.ErrGoogleAccountExists, codes.AlreadyExists, "GoogleAccountAlreadyExists"},
	{errs.ErrAlreadyExists, codes.AlreadyExists, "AlreadyExists"},

	{errs.ErrEmailHasNotBeenVerified, codes.FailedPrecondition, "EmailHasNotBeenVerified"},
	{errs.ErrPhoneHasNotBeenVerified, codes.FailedPrecondition, "PhoneHasNotBeenVerified"},
	{errs.ErrUserAlreadyVerified, codes.FailedPrecondition, "UserAlreadyVerified"},
	{errs.ErrUserDeleted, codes.FailedPrecondition, "UserDeleted"},

	{errs.ErrUserNotExists, codes.NotFound, "UserNotExists"},
	{errs.ErrNotFound, codes.NotFound, "NotFound"},

	{errs.ErrEmailOrPhoneRequired, codes.InvalidArgument, "EmailOrPhoneRequired"},
	{errs.ErrRequiredFacebookID, codes.InvalidArgument, "RequiredFacebookId"},
	{errs.ErrRequiredFacebookToken, codes.InvalidArgument, "RequiredFacebookAccessToken"},
	{errs.ErrRequiredGoogleID, codes.InvalidArgument, "RequiredGoogleId"},
	{errs.ErrRequiredGoogleAccessToken, codes.InvalidArgument, "RequiredGoogleAccessToken"},
	{errs.ErrInvalidVerifyToken, codes.InvalidArgument, "InvalidVerifyToken"},
	{errs.ErrInvalidResetToken, codes.InvalidArgument, "InvalidResetToken"},
	{errs.ErrInvalidArgument, codes.InvalidArgument, "InvalidArgument"},

	{errs.ErrInvalidPassword, codes.Unauthenticated, "InvalidPassword"},
	{errs.ErrInvalidToken, codes.Unauthenticated, "InvalidToken"},
	{errs.ErrInvalidFacebookIDOrToken, codes.Unauthenticated, "InvalidFacebookIdOrToken"},
	{errs.ErrInvalidFacebookAccessToken, codes.Unauthenticated, "InvalidFacebookAccessToken"},
	{errs.ErrInvalidGoogleIDOrToken, codes.Unauthenticated, "InvalidGoogleIdOrToken"},
	{errs.ErrInvalidGoogleAccessToken, codes.Unauthenticated, "InvalidGoogleAccessToken"},

	{errs.ErrRefreshCountLimitExceeded, codes.ResourceExhausted, "RefreshCountLimitExceeded"},

	{errs.ErrEmailSendFailed, codes.Unavailable, "EmailSendFailed"},
	{errs.ErrSMSSendFailed, codes.Unavailable, "SMSSendFailed"},
	{errs.ErrPinExhausted, codes.Unavailable, "PinExhausted"},
}

// toStatus converts a service error into a gRPC status error. The message
// starts with the stable error name so clients can match on it.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, m := range errTable {
		if errors.Is(err, m.err) {
			return status.Error(m.code, m.name)
		}
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "Canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "DeadlineExceeded")
	}
	return status.Error(codes.Internal, "Internal")
}

// ErrorName extracts the stable error name from a status error returned by
// the server. It returns "" for non-status errors.
func ErrorName(err error) string {
	st, ok := status.FromError(err)
	if !ok || err == nil {
		return ""
	}
	return st.Message()
}
