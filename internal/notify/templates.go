package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Message subjects.
const (
	SubjectVerifyEmail = "[Journey Lingua App] Provisional Registration Complete / Request for Main Registration Procedures"
	SubjectResetEmail  = "[Journey Lingua App] Request for Password Reset Procedure"
)

const footer = `━━━━━━━━━━━━━
Journey Lingua Corporation
https://www.journeylingua.com/en/us

Contact Us
%s

* This email address is for sending purposes only and we cannot respond to any replies. Thank you for your understanding.
`

var keepPathChars = strings.NewReplacer("%2F", "/", "%3F", "?")

// escapeLink escapes a path and query for embedding in the link= parameter.
func escapeLink(pathAndQuery string) string {
	return keepPathChars.Replace(url.QueryEscape(pathAndQuery))
}

// Templates renders message bodies.
type Templates struct {
	Links   LinkConfig
	ReplyTo string
	// Shortener is used for SMS links; nil falls back to the long link.
	Shortener Shortener
}

// VerifyEmailText is the body of the registration email.
func (t Templates) VerifyEmailText(token string) string {
	link := t.Links.LongLink(escapeLink("/auth/verify/email?token=" + token + "&type=verify"))
	return fmt.Sprintf(`Thank you for registering with Journey Lingua App.

Please click the URL below to complete your registration:

▼ Registration URL
%s

* This URL is valid for 24 hours.
* If the URL expires, please go through the temporary registration process again.
* If you do not recognize this email, please disregard it.

`+footer, link, t.ReplyTo)
}

// VerifySMSText is the body of the PIN text message.
func (t Templates) VerifySMSText(pin string) string {
	return fmt.Sprintf("The authentication code for the Journey Lingua app is %s. It is valid for 24 hours.", pin)
}

// ResetEmailText is the body of the password reset email.
func (t Templates) ResetEmailText(token string) string {
	link := t.Links.LongLink(escapeLink("/auth/reset-password?token=" + token))
	return fmt.Sprintf(`Thank you for using Journey Lingua App.

Please click the URL below to reset your password:

▼ Reset Password URL
%s

* This URL is valid for 24 hours.
* If the URL expires, please go through the password reset process again.
* If you do not recognize this email, please disregard it.

`+footer, link, t.ReplyTo)
}

// ResetSMSText is the body of the password reset text message.
func (t Templates) ResetSMSText(ctx context.Context, token string) (string, error) {
	pathAndQuery := "/auth/reset-password?token=" + token
	link := t.Links.LongLink(escapeLink(pathAndQuery))
	if t.Shortener != nil && t.Links.APIURL != "" {
		short, err := t.Shortener.Shorten(ctx, pathAndQuery)
		if err != nil {
			return "", fmt.Errorf("shorten reset link: %w", err)
		}
		link = short
	}
	return "▼ Reset your Journey Lingua App password\n" + link + "\n", nil
}
