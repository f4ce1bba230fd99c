package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/and161185/lingua-auth/internal/errs"
	"github.com/and161185/lingua-auth/internal/model"
)

// Login authenticates by the channel named in req.Type and issues a session.
func (s *AuthServiceImpl) Login(ctx context.Context, req model.LoginRequest) (model.Session, error) {
	switch req.Type {
	case model.LoginEmail, model.LoginPhone:
		return s.loginPassword(ctx, req.Credentials)
	case model.LoginFacebook:
		if req.Social.ProviderID == "" {
			return model.Session{}, errs.ErrRequiredFacebookID
		}
		if req.Social.AccessToken == "" {
			return model.Session{}, errs.ErrRequiredFacebookToken
		}
		u, err := mustExist(s.users.GetByFacebookID(ctx, req.Social.ProviderID))
		if err != nil {
			return model.Session{}, err
		}
		return s.openSession(ctx, u, model.LoginFacebook, u.IsFacebookVerified)
	case model.LoginGoogle:
		if req.Social.ProviderID == "" {
			return model.Session{}, errs.ErrRequiredGoogleID
		}
		if req.Social.AccessToken == "" {
			return model.Session{}, errs.ErrRequiredGoogleAccessToken
		}
		u, err := mustExist(s.users.GetByGoogleID(ctx, req.Social.ProviderID))
		if err != nil {
			return model.Session{}, err
		}
		return s.openSession(ctx, u, model.LoginGoogle, u.IsGoogleVerified)
	default:
		return model.Session{}, fmt.Errorf("%w: login_type %q", errs.ErrInvalidArgument, req.Type)
	}
}

// loginPassword logs in by email, or by phone when no email is given.
// A missing user still costs one password hash.
func (s *AuthServiceImpl) loginPassword(ctx context.Context, c model.Credentials) (model.Session, error) {
	var (
		u   *model.User
		err error
		lt  model.LoginType
	)
	switch {
	case c.Email != "":
		lt = model.LoginEmail
		u, err = lookup(s.users.GetByEmail(ctx, c.Email))
	case c.Phone != "":
		lt = model.LoginPhone
		u, err = lookup(s.users.GetByPhone(ctx, c.Phone))
	default:
		return model.Session{}, errs.ErrUserNotExists
	}
	if err != nil {
		return model.Session{}, err
	}
	if u == nil {
		_, _ = s.hasher.Hash(c.Password)
		return model.Session{}, errs.ErrUserNotExists
	}
	if !s.hasher.Verify(c.Password, u.HashedPassword) {
		return model.Session{}, errs.ErrInvalidPassword
	}
	verified := u.IsEmailVerified
	if lt == model.LoginPhone {
		verified = u.IsPhoneVerified
	}
	return s.openSession(ctx, u, lt, verified)
}

func (s *AuthServiceImpl) openSession(ctx context.Context, u *model.User, lt model.LoginType, verified bool) (model.Session, error) {
	if u.Deleted() {
		return model.Session{}, errs.ErrUserDeleted
	}
	token, err := s.sessions.Write(ctx, u, lt)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{AccessToken: token, TokenType: TokenTypeBearer, IsUserVerified: verified}, nil
}

// Logout revokes the session token. Unknown tokens are ignored.
func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	s.bestEffort("destroy session", s.sessions.Destroy(ctx, token))
	return nil
}

// CurrentUser resolves the user behind a session token.
// Any mismatch between the stored record and the signed claims fails with ErrInvalidToken.
func (s *AuthServiceImpl) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	id, ok, err := s.sessions.Read(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return nil, errs.ErrInvalidToken
	}
	claims, err := s.tokens.Validate(token, s.audiences...)
	if err != nil {
		return nil, errs.ErrInvalidToken
	}
	if claims.UserID != strconv.FormatInt(id, 10) {
		s.log.Warn("session user mismatch", zap.Int64("stored", id), zap.String("claimed", claims.UserID))
		return nil, errs.ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrInvalidToken
		}
		return nil, err
	}
	if u.Deleted() {
		return nil, errs.ErrUserDeleted
	}
	return u, nil
}

// CheckVerification reports whether the channel a session was issued for is verified.
// Unknown or badly signed tokens fail with ErrInvalidToken; other failures read as unverified.
func (s *AuthServiceImpl) CheckVerification(ctx context.Context, token string) (bool, error) {
	id, ok, err := s.sessions.Read(ctx, token)
	if err != nil {
		s.log.Warn("read session failed", zap.Error(err))
		return false, nil
	}
	if !ok {
		return false, errs.ErrInvalidToken
	}
	claims, err := s.tokens.Validate(token, s.audiences...)
	if err != nil {
		return false, errs.ErrInvalidToken
	}
	if claims.UserID != strconv.FormatInt(id, 10) {
		return false, nil
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return false, nil
	}
	switch {
	case claims.Email != "":
		return u.IsEmailVerified, nil
	case claims.Phone != "":
		return u.IsPhoneVerified, nil
	case claims.FacebookID != "":
		return u.IsFacebookVerified, nil
	case claims.GoogleID != "":
		return u.IsGoogleVerified, nil
	}
	return false, nil
}
