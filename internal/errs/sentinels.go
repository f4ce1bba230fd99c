// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Not-found.
var (
	// ErrNotFound indicates the requested entity does not exist in a repository.
	ErrNotFound = errors.New("not found")

	// ErrUserNotExists indicates the user could not be resolved.
	ErrUserNotExists = errors.New("user not exists")
)

// ErrInvalidArgument indicates a malformed request.
var ErrInvalidArgument = errors.New("invalid argument")

// Conflicts on channel identifiers.
var (
	ErrAlreadyExists             = errors.New("already exists")
	ErrEmailAlreadyExists        = errors.New("email already exists")
	ErrEmailHasNotBeenVerified   = errors.New("email has not been verified")
	ErrPhoneAlreadyExists        = errors.New("phone already exists")
	ErrPhoneHasNotBeenVerified   = errors.New("phone has not been verified")
	ErrFacebookAccountExists     = errors.New("facebook account already exists")
	ErrGoogleAccountExists       = errors.New("google account already exists")
	ErrEmailOrPhoneRequired      = errors.New("email or phone required")
	ErrRequiredFacebookID        = errors.New("facebook id required")
	ErrRequiredFacebookToken     = errors.New("facebook access token required")
	ErrRequiredGoogleID          = errors.New("google id required")
	ErrRequiredGoogleAccessToken = errors.New("google access token required")
)

// Invalid credentials.
var (
	ErrInvalidPassword            = errors.New("invalid password")
	ErrInvalidToken               = errors.New("invalid token")
	ErrInvalidVerifyToken         = errors.New("invalid verify token")
	ErrInvalidResetToken          = errors.New("invalid reset token")
	ErrInvalidFacebookIDOrToken   = errors.New("invalid facebook id or access token")
	ErrInvalidFacebookAccessToken = errors.New("invalid facebook access token")
	ErrInvalidGoogleIDOrToken     = errors.New("invalid google id or access token")
	ErrInvalidGoogleAccessToken   = errors.New("invalid google access token")
)

// Terminal state, lifecycle and rate limiting.
var (
	ErrUserAlreadyVerified       = errors.New("user already verified")
	ErrUserDeleted               = errors.New("user deleted")
	ErrRefreshCountLimitExceeded = errors.New("refresh count limit exceeded")
)

// Transport failures of outbound collaborators.
var (
	ErrEmailSendFailed = errors.New("email send failed")
	ErrSMSSendFailed   = errors.New("sms send failed")

	// ErrPinExhausted means no free PIN was found within the retry budget.
	ErrPinExhausted = errors.New("failed to generate a pin code")
)
