package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/and161185/lingua-auth/internal/errs"
	"github.com/and161185/lingua-auth/internal/identity"
	"github.com/and161185/lingua-auth/internal/model"
)

// RegisterEmail creates an unverified email account and mails a verify link.
func (s *AuthServiceImpl) RegisterEmail(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" {
		return nil, errs.ErrEmailOrPhoneRequired
	}
	if password == "" {
		return nil, errs.ErrInvalidArgument
	}
	existing, err := lookup(s.users.GetByEmail(ctx, email))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !existing.IsEmailVerified {
			return nil, errs.ErrEmailHasNotBeenVerified
		}
		return nil, errs.ErrEmailAlreadyExists
	}

	u, err := s.newPasswordUser(password)
	if err != nil {
		return nil, err
	}
	u.Email = model.Str(email)

	var token string
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.createWithCode(ctx, u, errs.ErrEmailAlreadyExists); err != nil {
			return err
		}
		if token, err = s.verify.WriteEmailToken(ctx, u); err != nil {
			return err
		}
		return s.notify.SendVerifyEmail(ctx, email, token)
	})
	if err != nil {
		s.log.Error("user creation by email failed", zap.Error(err))
		s.discardVerifyToken(ctx, token)
		return nil, err
	}
	return u, nil
}

// RegisterPhone creates an unverified phone account and texts a PIN.
func (s *AuthServiceImpl) RegisterPhone(ctx context.Context, phone, password string) (*model.User, error) {
	if phone == "" {
		return nil, errs.ErrEmailOrPhoneRequired
	}
	if password == "" {
		return nil, errs.ErrInvalidArgument
	}
	existing, err := lookup(s.users.GetByPhone(ctx, phone))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !existing.IsPhoneVerified {
			return nil, errs.ErrPhoneHasNotBeenVerified
		}
		return nil, errs.ErrPhoneAlreadyExists
	}

	u, err := s.newPasswordUser(password)
	if err != nil {
		return nil, err
	}
	u.Phone = model.Str(phone)

	var pin string
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.createWithCode(ctx, u, errs.ErrPhoneAlreadyExists); err != nil {
			return err
		}
		if pin, err = s.verify.WritePhonePIN(ctx, u); err != nil {
			return err
		}
		return s.notify.SendVerifyPIN(ctx, phone, pin)
	})
	if err != nil {
		s.log.Error("user creation by phone failed", zap.Error(err))
		s.discardVerifyToken(ctx, pin)
		return nil, err
	}
	return u, nil
}

// RegisterFacebook creates an account verified by a Facebook access token.
func (s *AuthServiceImpl) RegisterFacebook(ctx context.Context, c model.SocialCredentials) (*model.User, error) {
	if c.ProviderID == "" {
		return nil, errs.ErrRequiredFacebookID
	}
	if c.AccessToken == "" {
		return nil, errs.ErrRequiredFacebookToken
	}
	existing, err := lookup(s.users.GetByFacebookID(ctx, c.ProviderID))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.ErrFacebookAccountExists
	}

	u := &model.User{
		SexCode:             model.SexNotKnown,
		FacebookID:          model.Str(c.ProviderID),
		FacebookAccessToken: model.Str(c.AccessToken),
		IsFacebookVerified:  true,
	}
	if err := s.registerSocial(ctx, u, s.facebook, c, errs.ErrInvalidFacebookIDOrToken, errs.ErrFacebookAccountExists); err != nil {
		s.log.Error("user creation by facebook failed", zap.Error(err))
		return nil, err
	}
	return u, nil
}

// RegisterGoogle creates an account verified by a Google ID token.
func (s *AuthServiceImpl) RegisterGoogle(ctx context.Context, c model.SocialCredentials) (*model.User, error) {
	if c.ProviderID == "" {
		return nil, errs.ErrRequiredGoogleID
	}
	if c.AccessToken == "" {
		return nil, errs.ErrRequiredGoogleAccessToken
	}
	existing, err := lookup(s.users.GetByGoogleID(ctx, c.ProviderID))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.ErrGoogleAccountExists
	}

	u := &model.User{
		SexCode:           model.SexNotKnown,
		GoogleID:          model.Str(c.ProviderID),
		GoogleAccessToken: model.Str(c.AccessToken),
		IsGoogleVerified:  true,
	}
	if err := s.registerSocial(ctx, u, s.google, c, errs.ErrInvalidGoogleIDOrToken, errs.ErrGoogleAccountExists); err != nil {
		s.log.Error("user creation by google failed", zap.Error(err))
		return nil, err
	}
	return u, nil
}

// registerSocial checks the provider token and stores u with its code.
func (s *AuthServiceImpl) registerSocial(ctx context.Context, u *model.User, checker identity.Checker,
	c model.SocialCredentials, invalid, conflict error) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := checker.IsValidAccessToken(ctx, c.ProviderID, c.AccessToken)
		if err != nil {
			return err
		}
		if !ok {
			return invalid
		}
		return s.createWithCode(ctx, u, conflict)
	})
}

func (s *AuthServiceImpl) newPasswordUser(password string) (*model.User, error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	return &model.User{HashedPassword: hashed, SexCode: model.SexNotKnown}, nil
}

// createWithCode inserts u, then backfills its user code from the new id.
func (s *AuthServiceImpl) createWithCode(ctx context.Context, u *model.User, conflict error) error {
	if err := u.ValidateChannels(); err != nil {
		return err
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return conflict
		}
		return err
	}
	if err := u.GenerateUserCodeIfEmpty(); err != nil {
		return err
	}
	return s.users.Update(ctx, u)
}

// discardVerifyToken removes a token written by a rolled back operation.
func (s *AuthServiceImpl) discardVerifyToken(ctx context.Context, token string) {
	if token == "" {
		return
	}
	s.bestEffort("destroy token", s.verify.Destroy(ctx, token))
}
