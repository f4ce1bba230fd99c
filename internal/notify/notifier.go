package notify

import (
	"context"
	"fmt"

	"github.com/and161185/lingua-auth/internal/errs"
)

// Notifier renders and sends the verification and reset messages.
type Notifier struct {
	email     EmailSender
	sms       SMSSender
	templates Templates
	from      string
	replyTo   string
}

// NewNotifier wires senders and templates. from and replyTo apply to every email.
func NewNotifier(email EmailSender, sms SMSSender, t Templates, from, replyTo string) *Notifier {
	if t.ReplyTo == "" {
		t.ReplyTo = replyTo
	}
	return &Notifier{email: email, sms: sms, templates: t, from: from, replyTo: replyTo}
}

func (n *Notifier) mail(ctx context.Context, to, subject, text string) error {
	m := Email{From: n.from, To: []string{to}, Subject: subject, Text: text}
	if n.replyTo != "" {
		m.ReplyTo = []string{n.replyTo}
	}
	return n.email.SendEmail(ctx, m)
}

// SendVerifyEmail mails the registration link carrying token.
func (n *Notifier) SendVerifyEmail(ctx context.Context, to, token string) error {
	return n.mail(ctx, to, SubjectVerifyEmail, n.templates.VerifyEmailText(token))
}

// SendVerifyPIN texts the verification PIN.
func (n *Notifier) SendVerifyPIN(ctx context.Context, phone, pin string) error {
	return n.sms.SendSMS(ctx, phone, n.templates.VerifySMSText(pin))
}

// SendResetEmail mails the password reset link carrying token.
func (n *Notifier) SendResetEmail(ctx context.Context, to, token string) error {
	return n.mail(ctx, to, SubjectResetEmail, n.templates.ResetEmailText(token))
}

// SendResetSMS texts a short password reset link carrying token.
func (n *Notifier) SendResetSMS(ctx context.Context, phone, token string) error {
	text, err := n.templates.ResetSMSText(ctx, token)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrSMSSendFailed, err)
	}
	return n.sms.SendSMS(ctx, phone, text)
}
