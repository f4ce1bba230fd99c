package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/and161185/lingua-auth/internal/errs"
	"github.com/and161185/lingua-auth/internal/model"
)

// ForgotPasswordEmail mails a password reset link to a registered email.
func (s *AuthServiceImpl) ForgotPasswordEmail(ctx context.Context, email string) error {
	if email == "" {
		return errs.ErrEmailOrPhoneRequired
	}
	u, err := mustExist(s.users.GetByEmail(ctx, email))
	if err != nil {
		return err
	}
	return s.sendReset(ctx, u, func(token string) error {
		return s.notify.SendResetEmail(ctx, email, token)
	})
}

// ForgotPasswordPhone texts a password reset link to a registered phone.
func (s *AuthServiceImpl) ForgotPasswordPhone(ctx context.Context, phone string) error {
	if phone == "" {
		return errs.ErrEmailOrPhoneRequired
	}
	u, err := mustExist(s.users.GetByPhone(ctx, phone))
	if err != nil {
		return err
	}
	return s.sendReset(ctx, u, func(token string) error {
		return s.notify.SendResetSMS(ctx, phone, token)
	})
}

func (s *AuthServiceImpl) sendReset(ctx context.Context, u *model.User, deliver func(token string) error) error {
	if u.Deleted() {
		return errs.ErrUserDeleted
	}
	token, err := s.resets.Write(ctx, u.ID)
	if err != nil {
		return err
	}
	if err := deliver(token); err != nil {
		s.log.Error("send reset token failed", zap.Int64("user_id", u.ID), zap.Error(err))
		s.bestEffort("destroy reset token", s.resets.Destroy(ctx, token))
		return err
	}
	return nil
}

// ResetPassword sets a new password for the user bound to a reset token.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, password string) error {
	if password == "" {
		return errs.ErrInvalidArgument
	}
	id, ok, err := s.resets.Read(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrInvalidResetToken
	}
	u, err := mustExist(s.users.GetByID(ctx, id))
	if err != nil {
		return err
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	u.HashedPassword = hashed
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}
	s.bestEffort("destroy reset token", s.resets.Destroy(ctx, token), zap.Int64("user_id", u.ID))
	return nil
}
