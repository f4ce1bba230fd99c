package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	grpcserver "github.com/and161185/lingua-auth/internal/server/grpc"
)

type command struct {
	name  string
	usage string
	auth  bool // send the stored session token
	run   func(ctx context.Context, c *grpcserver.AuthClient, args []string) (any, error)
}

var commands = []command{
	{"register-email", "-email <email> -p <password>", false, cmdRegisterEmail},
	{"register-phone", "-phone <phone> -p <password>", false, cmdRegisterPhone},
	{"register-facebook", "-id <facebook id> -token <access token>", false, cmdRegisterFacebook},
	{"register-google", "-id <google id> -token <access token>", false, cmdRegisterGoogle},
	{"login", "-type EMAIL|PHONE|FACEBOOK|GOOGLE [-email|-phone -p | -id -token]  (saves token)", false, cmdLogin},
	{"logout", "(drops token)", true, cmdLogout},
	{"verify-email", "-token <token>  (saves token)", false, cmdVerifyEmail},
	{"verify-phone", "-pin <pin>  (saves token)", false, cmdVerifyPhone},
	{"refresh-email", "", true, cmdRefreshEmail},
	{"refresh-phone", "", true, cmdRefreshPhone},
	{"forgot-email", "-email <email>", false, cmdForgotEmail},
	{"forgot-phone", "-phone <phone>", false, cmdForgotPhone},
	{"reset", "-token <reset token> -p <new password>", false, cmdReset},
	{"whoami", "", true, cmdWhoami},
	{"check", "", true, cmdCheck},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func commandHelp() string {
	var b strings.Builder
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-18s %s\n", c.name, c.usage)
	}
	return b.String()
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func need(vals ...string) bool {
	for _, v := range vals {
		if v == "" {
			return false
		}
	}
	return true
}

func cmdRegisterEmail(ctx context.Context, c *grpcserver.AuthClient, args []string) (any, error) {
	fs := newFlagSet("register-email")
	email := fs.String("email", "", "email")
	p := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if !need(*email, *p) {
		return nil, errors.New("need -email and -p")
	}
	return c.RegisterEmail(ctx, &grpcserver.RegisterEmailRequest{Email: *email, Password: *p})
}

func cmdRegisterPhone(ctx context.Context, c *grpcserver.AuthClient, args []string) (any, error) {
	fs := newFlagSet("register-phone")
	phone := fs.String("phone", "", "phone")
	p := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if !need(*phone, *p) {
		return nil, errors.New("need -phone and -p")
	}
	return c.RegisterPhone(ctx, &grpcserver.RegisterPhoneRequest{Phone: *phone, Password: *p})
}

func parseSocial(name string, args []string) (*grpcserver.RegisterSocialRequest, error) {
	fs := newFlagSet(name)
	id := fs.String("id", "", "account id")
	tok := fs.String("token", "", "access token")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if !need(*id, *tok) {
		return nil, errors.New("need -id and -token")
	}
	return &grpcserver.RegisterSocialRequest{ID: *id, AccessToken: *tok}, nil
}

func cmdRegisterFacebook(ctx context.Context, c *grpcserver.AuthClient, args []string) (any, error) {
	req, err := parseSocial("register-facebook", args)
	if err != nil {
		return nil, err
	}
	return c.RegisterFacebook(ctx, req)
}

func cmdRegisterGoogle(ctx context.Context, c *grpcserver.AuthClient, args []string) (any, error) {
	req, err := parseSocial("register-google", args)
	if err != nil {
		return nil, err
	}
	return c.RegisterGoogle(ctx, req)
}

// parseLogin builds a login request and checks the fields its type needs.
func parseLogin(args []string) (*grpcserver.LoginRequest, error) {
	fs := newFlagSet("login")
	typ := fs.String("type", "EMAIL", "EMAIL|PHONE|FACEBOOK|GOOGLE")
	email := fs.String("email", "", "email")
	phone := fs.String("phone", "", "phone")
	p := fs.String("p", "", "password")
	id := fs.String("id", "", "facebook/google id")
	tok := fs.String("token", "", "facebook/google access token")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	req := &grpcserver.LoginRequest{
		LoginType:   strings.ToUpper(*typ),
		Email:       *email,
		Phone:       *phone,
		Password:    *p,
		ID:          *id,
		AccessToken: *tok,
	}
	switch req.LoginType {
	case "EMAIL":
		if !need(req.Email, req.Password) {
			return nil, errors.New("need -email and -p")
		}
	case "PHONE":
		if !need(req.Phone, req.Password) {
			return nil, errors.New("need -phone and -p")
		}
	case "FACEBOOK", "GOOGLE":
		if !need(req.ID, req.AccessToken) {
			return nil, errors.New("need -id and -token")
		}
	default:
		return nil, fmt.Errorf("unknown login type %q", *typ)
	}
	return req, nil
}

func cmdLogin(ctx context.Context, c *grpcserver.AuthClient, args []string) (any, error) {
	req, err := parseLogin(args)
	if err != nil {
		return nil, err
	}
	return c.Login(ctx, req)
}

func cmdLogout(ctx context.Context, c *grpcserver.AuthClient, _ []string) (any, error) {
	return c.Logout(ctx)
}

func cmdVerifyEmail(ctx context.Context, c *grpcserver.AuthClient, args []string) (any, error) {
	fs := newFlagSet("verify-email")
	tok := fs.String("token", "", "token from the email link")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if !need(*tok) {
		return nil, errors.New("need -token")
	}
	return c.VerifyEmail(ctx, &grpcserver.VerifyEmailRequest{Token: *tok})
}

func cmdVerifyPhone(ctx context.Context, c *grpcserver.AuthClient, args []string) (any, error) {
	fs := newFlagSet("verify-phone")
	pin := fs.String("pin", "", "pin from the SMS")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if !need(*pin) {
		return nil, errors.New("need -pin")
	}
	return c.VerifyPhone(ctx, &grpcserver.VerifyPhoneRequest{Pin: *pin})
}

func cmdRefreshEmail(ctx context.Context, c *grpcserver.AuthClient, _ []string) (any, error) {
	return c.RefreshEmailToken(ctx)
}

func cmdRefreshPhone(ctx context.Context, c *grpcserver.AuthClient, _ []string) (any, error) {
	return c.RefreshPhoneToken(ctx)
}

func cmdForgotEmail(ctx context.Context, c *grpcserver.AuthClient, args []string) (any, error) {
	fs := newFlagSet("forgot-email")
	email := fs.String("email", "", "email")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if !need(*email) {
		return nil, errors.New("need -email")
	}
	return c.ForgotPasswordEmail(ctx, &grpcserver.ForgotPasswordEmailRequest{Email: *email})
}

func cmdForgotPhone(ctx context.Context, c *grpcserver.AuthClient, args []string) (any, error) {
	fs := newFlagSet("forgot-phone")
	phone := fs.String("phone", "", "phone")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if !need(*phone) {
		return nil, errors.New("need -phone")
	}
	return c.ForgotPasswordPhone(ctx, &grpcserver.ForgotPasswordPhoneRequest{Phone: *phone})
}

func cmdReset(ctx context.Context, c *grpcserver.AuthClient, args []string) (any, error) {
	fs := newFlagSet("reset")
	tok := fs.String("token", "", "reset token")
	p := fs.String("p", "", "new password")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if !need(*tok, *p) {
		return nil, errors.New("need -token and -p")
	}
	return c.ResetPassword(ctx, &grpcserver.ResetPasswordRequest{Token: *tok, Password: *p})
}

func cmdWhoami(ctx context.Context, c *grpcserver.AuthClient, _ []string) (any, error) {
	return c.CurrentUser(ctx)
}

func cmdCheck(ctx context.Context, c *grpcserver.AuthClient, _ []string) (any, error) {
	return c.CheckVerification(ctx)
}
