package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/lingua-auth/internal/config"
	"github.com/and161185/lingua-auth/internal/crypto"
	"github.com/and161185/lingua-auth/internal/identity"
	"github.com/and161185/lingua-auth/internal/kv"
	"github.com/and161185/lingua-auth/internal/limiter"
	"github.com/and161185/lingua-auth/internal/notify"
	"github.com/and161185/lingua-auth/internal/repository"
	"github.com/and161185/lingua-auth/internal/service"
	"github.com/and161185/lingua-auth/internal/signer"
	"github.com/and161185/lingua-auth/internal/tokenstore"
)

const outboundTimeout = 10 * time.Second

// newStore picks Redis or the in-memory store. The returned close func is never nil.
func newStore(ctx context.Context, cfg *config.Config) (kv.Store, func(), error) {
	if !cfg.RedisOn {
		return kv.NewMemory(), func() {}, nil
	}
	store, client, err := kv.NewRedis(ctx, kv.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	return store, func() { _ = client.Close() }, nil
}

// newNotifier builds message delivery. Local runs only log messages.
func newNotifier(ctx context.Context, cfg *config.Config, log *zap.Logger) (*notify.Notifier, error) {
	links := notify.LinkConfig{
		Root:   cfg.DynamicLink.Root,
		Link:   cfg.DynamicLink.Link,
		APN:    cfg.DynamicLink.APN,
		AFL:    cfg.DynamicLink.AFL,
		ISI:    cfg.DynamicLink.ISI,
		IBI:    cfg.DynamicLink.IBI,
		IFL:    cfg.DynamicLink.IFL,
		EFL:    cfg.DynamicLink.EFL,
		APIURL: cfg.DynamicLink.APIURL,
		APIKey: cfg.DynamicLink.APIKey,
	}
	httpClient := &http.Client{Timeout: outboundTimeout}
	tpl := notify.Templates{
		Links:     links,
		ReplyTo:   cfg.MailReplyTo,
		Shortener: notify.NewDynamicLinks(links, httpClient),
	}

	if cfg.Local() {
		return notify.NewNotifier(notify.NewLogEmail(log), notify.NewLogSMS(log), tpl, cfg.MailSender, cfg.MailReplyTo), nil
	}

	email, err := notify.NewSES(ctx, notify.SESOptions{
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("ses: %w", err)
	}
	sms := notify.NewSMSGateway(cfg.SMSEndpoint, cfg.SMSUsername, cfg.SMSPassword, httpClient, log)
	return notify.NewNotifier(email, sms, tpl, cfg.MailSender, cfg.MailReplyTo), nil
}

// newIdentity builds the Facebook and Google checkers. Local runs accept any token.
func newIdentity(ctx context.Context, cfg *config.Config, log *zap.Logger) (fb, google identity.Checker, err error) {
	if cfg.Local() {
		return identity.Local{}, identity.Local{}, nil
	}
	httpClient := &http.Client{Timeout: outboundTimeout}
	f, err := identity.NewFacebook(cfg.FacebookClientID, cfg.FacebookClientSecret, httpClient, log)
	if err != nil {
		return nil, nil, err
	}
	g, err := identity.NewGoogle(ctx, cfg.GoogleClientID, httpClient, log)
	if err != nil {
		return nil, nil, err
	}
	return f, g, nil
}

// newService assembles the account service over the given persistence.
func newService(
	ctx context.Context,
	cfg *config.Config,
	users repository.UserRepository,
	tx repository.Transactor,
	store kv.Store,
	log *zap.Logger,
) (*service.AuthServiceImpl, error) {
	sig, err := signer.New(cfg.JWT.Secret, cfg.JWT.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("signer: %w", err)
	}
	n, err := newNotifier(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	fb, google, err := newIdentity(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return service.NewAuthService(service.Deps{
		Users:     users,
		Tx:        tx,
		Hasher:    crypto.Argon2{},
		Verify:    tokenstore.NewVerifyTokens(store),
		Resets:    tokenstore.NewResetTokens(store),
		Sessions:  tokenstore.NewSessions(store, sig, cfg.JWT.AudCreate, cfg.JWT.ExpirationDays),
		Tokens:    sig,
		Limiter:   limiter.NewKV(store, cfg.RefreshCountLimit, limiter.DefaultWindow),
		Notifier:  n,
		Facebook:  fb,
		Google:    google,
		Audiences: []string{cfg.JWT.AudCreate, cfg.JWT.AudVerify, cfg.JWT.AudReset},
		Log:       log,
	}), nil
}
