package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/and161185/lingua-auth/internal/errs"
	"github.com/and161185/lingua-auth/internal/model"
)

// VerifyEmail consumes an email verify token and opens a session on the email channel.
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) (model.Session, error) {
	email, ok, err := s.verify.Read(ctx, token)
	if err != nil {
		return model.Session{}, err
	}
	if !ok {
		return model.Session{}, errs.ErrInvalidVerifyToken
	}
	u, err := mustExist(s.users.GetByEmail(ctx, email))
	if err != nil {
		return model.Session{}, err
	}
	if u.IsEmailVerified {
		return model.Session{}, errs.ErrUserAlreadyVerified
	}
	u.IsEmailVerified = true
	return s.completeVerification(ctx, u, token, model.LoginEmail)
}

// VerifyPhone consumes a phone PIN and opens a session on the phone channel.
func (s *AuthServiceImpl) VerifyPhone(ctx context.Context, pin string) (model.Session, error) {
	phone, ok, err := s.verify.Read(ctx, pin)
	if err != nil {
		return model.Session{}, err
	}
	if !ok {
		return model.Session{}, errs.ErrInvalidVerifyToken
	}
	u, err := mustExist(s.users.GetByPhone(ctx, phone))
	if err != nil {
		return model.Session{}, err
	}
	if u.IsPhoneVerified {
		return model.Session{}, errs.ErrUserAlreadyVerified
	}
	u.IsPhoneVerified = true
	return s.completeVerification(ctx, u, pin, model.LoginPhone)
}

// completeVerification persists the flag, then drops the token and the refresh
// count. Cleanup failures are logged; the verification stands.
func (s *AuthServiceImpl) completeVerification(ctx context.Context, u *model.User, token string, lt model.LoginType) (model.Session, error) {
	if err := s.users.Update(ctx, u); err != nil {
		return model.Session{}, err
	}
	s.bestEffort("destroy token", s.verify.Destroy(ctx, token), zap.Int64("user_id", u.ID))
	s.bestEffort("destroy count", s.lim.Reset(ctx, u.ID), zap.Int64("user_id", u.ID))

	session, err := s.sessions.Write(ctx, u, lt)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{AccessToken: session, TokenType: TokenTypeBearer, IsUserVerified: true}, nil
}

// RefreshEmailToken reissues the email verify link, counting against the refresh limit.
func (s *AuthServiceImpl) RefreshEmailToken(ctx context.Context, u *model.User) error {
	if u.IsEmailVerified {
		return errs.ErrUserAlreadyVerified
	}
	email := model.Deref(u.Email)
	if email == "" {
		return errs.ErrEmailOrPhoneRequired
	}
	return s.refresh(ctx, u, "email", func(ctx context.Context) (string, error) {
		return s.verify.WriteEmailToken(ctx, u)
	}, func(ctx context.Context, token string) error {
		return s.notify.SendVerifyEmail(ctx, email, token)
	})
}

// RefreshPhoneToken reissues the phone PIN, counting against the refresh limit.
func (s *AuthServiceImpl) RefreshPhoneToken(ctx context.Context, u *model.User) error {
	if u.IsPhoneVerified {
		return errs.ErrUserAlreadyVerified
	}
	phone := model.Deref(u.Phone)
	if phone == "" {
		return errs.ErrEmailOrPhoneRequired
	}
	return s.refresh(ctx, u, "phone", func(ctx context.Context) (string, error) {
		return s.verify.WritePhonePIN(ctx, u)
	}, func(ctx context.Context, pin string) error {
		return s.notify.SendVerifyPIN(ctx, phone, pin)
	})
}

// refresh issues a token, bumps the count and delivers the token as one unit.
// On failure the new token is dropped and the previous count restored.
func (s *AuthServiceImpl) refresh(ctx context.Context, u *model.User, channel string,
	issue func(context.Context) (string, error), deliver func(context.Context, string) error) error {
	count, allowed, err := s.lim.Allow(ctx, u.ID)
	if err != nil {
		return err
	}
	if !allowed {
		return errs.ErrRefreshCountLimitExceeded
	}

	var token string
	recorded := false
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if token, err = issue(ctx); err != nil {
			return err
		}
		if err := s.lim.Record(ctx, u.ID, count+1); err != nil {
			return err
		}
		recorded = true
		return deliver(ctx, token)
	})
	if err == nil {
		return nil
	}

	s.log.Error("refresh verify token failed", zap.String("channel", channel), zap.Int64("user_id", u.ID), zap.Error(err))
	s.discardVerifyToken(ctx, token)
	if recorded {
		if count == 0 {
			s.bestEffort("restore count", s.lim.Reset(ctx, u.ID))
		} else {
			s.bestEffort("restore count", s.lim.Record(ctx, u.ID, count))
		}
	}
	return err
}
