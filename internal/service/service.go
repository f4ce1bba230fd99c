// Package service contains the registration, login and verification use cases.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/and161185/lingua-auth/internal/crypto"
	"github.com/and161185/lingua-auth/internal/errs"
	"github.com/and161185/lingua-auth/internal/identity"
	"github.com/and161185/lingua-auth/internal/limiter"
	"github.com/and161185/lingua-auth/internal/model"
	"github.com/and161185/lingua-auth/internal/repository"
	"github.com/and161185/lingua-auth/internal/tokenstore"
)

// TokenTypeBearer is the token_type of every issued session.
const TokenTypeBearer = "bearer"

// AuthService defines the account use cases exposed to the transport layer.
type AuthService interface {
	RegisterEmail(ctx context.Context, email, password string) (*model.User, error)
	RegisterPhone(ctx context.Context, phone, password string) (*model.User, error)
	RegisterFacebook(ctx context.Context, c model.SocialCredentials) (*model.User, error)
	RegisterGoogle(ctx context.Context, c model.SocialCredentials) (*model.User, error)

	Login(ctx context.Context, req model.LoginRequest) (model.Session, error)
	Logout(ctx context.Context, token string) error

	ForgotPasswordEmail(ctx context.Context, email string) error
	ForgotPasswordPhone(ctx context.Context, phone string) error
	ResetPassword(ctx context.Context, token, password string) error

	VerifyEmail(ctx context.Context, token string) (model.Session, error)
	VerifyPhone(ctx context.Context, pin string) (model.Session, error)
	RefreshEmailToken(ctx context.Context, u *model.User) error
	RefreshPhoneToken(ctx context.Context, u *model.User) error

	CurrentUser(ctx context.Context, token string) (*model.User, error)
	CheckVerification(ctx context.Context, token string) (bool, error)
}

// Notifier delivers verification and reset messages.
type Notifier interface {
	SendVerifyEmail(ctx context.Context, to, token string) error
	SendVerifyPIN(ctx context.Context, phone, pin string) error
	SendResetEmail(ctx context.Context, to, token string) error
	SendResetSMS(ctx context.Context, phone, token string) error
}

// TokenValidator checks signed bearer tokens.
type TokenValidator interface {
	Validate(token string, audiences ...string) (model.Claims, error)
}

// Deps are the collaborators of AuthServiceImpl.
type Deps struct {
	Users    repository.UserRepository
	Tx       repository.Transactor
	Hasher   crypto.Hasher
	Verify   *tokenstore.VerifyTokens
	Resets   *tokenstore.ResetTokens
	Sessions *tokenstore.Sessions
	Tokens   TokenValidator
	Limiter  limiter.Limiter
	Notifier Notifier
	Facebook identity.Checker
	Google   identity.Checker

	// Audiences accepted when decoding session tokens.
	Audiences []string
	Log       *zap.Logger
}

// AuthServiceImpl implements AuthService.
type AuthServiceImpl struct {
	users     repository.UserRepository
	tx        repository.Transactor
	hasher    crypto.Hasher
	verify    *tokenstore.VerifyTokens
	resets    *tokenstore.ResetTokens
	sessions  *tokenstore.Sessions
	tokens    TokenValidator
	lim       limiter.Limiter
	notify    Notifier
	facebook  identity.Checker
	google    identity.Checker
	audiences []string
	log       *zap.Logger
}

var _ AuthService = (*AuthServiceImpl)(nil)

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(d Deps) *AuthServiceImpl {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Hasher == nil {
		d.Hasher = crypto.Argon2{}
	}
	return &AuthServiceImpl{
		users:     d.Users,
		tx:        d.Tx,
		hasher:    d.Hasher,
		verify:    d.Verify,
		resets:    d.Resets,
		sessions:  d.Sessions,
		tokens:    d.Tokens,
		lim:       d.Limiter,
		notify:    d.Notifier,
		facebook:  d.Facebook,
		google:    d.Google,
		audiences: d.Audiences,
		log:       d.Log,
	}
}

// lookup maps a repository miss to (nil, nil) so callers can branch on presence.
func lookup(u *model.User, err error) (*model.User, error) {
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

// mustExist maps a repository miss to ErrUserNotExists.
func mustExist(u *model.User, err error) (*model.User, error) {
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrUserNotExists
	}
	return u, err
}

// bestEffort runs a cleanup step and only logs its failure.
func (s *AuthServiceImpl) bestEffort(what string, err error, fields ...zap.Field) {
	if err != nil {
		s.log.Warn("failed to "+what, append(fields, zap.Error(err))...)
	}
}
