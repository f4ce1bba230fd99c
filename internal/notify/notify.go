// Package notify delivers verification and reset messages by email and SMS.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// Email is one outgoing message.
type Email struct {
	From    string
	To      []string
	ReplyTo []string
	Subject string
	Text    string
	HTML    string // optional
}

// EmailSender delivers email. Failures wrap errs.ErrEmailSendFailed.
type EmailSender interface {
	SendEmail(ctx context.Context, m Email) error
}

// SMSSender delivers a text message. Failures wrap errs.ErrSMSSendFailed.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, text string) error
}

// LogEmail writes messages to the log instead of sending them.
type LogEmail struct{ log *zap.Logger }

// NewLogEmail returns a logging EmailSender for local runs.
func NewLogEmail(log *zap.Logger) *LogEmail {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogEmail{log: log}
}

// SendEmail implements EmailSender.
func (l *LogEmail) SendEmail(_ context.Context, m Email) error {
	l.log.Info("send email",
		zap.String("from", m.From),
		zap.Strings("to", m.To),
		zap.Strings("reply_to", m.ReplyTo),
		zap.String("subject", m.Subject),
		zap.String("text", m.Text),
	)
	return nil
}

// LogSMS writes text messages to the log instead of sending them.
type LogSMS struct{ log *zap.Logger }

// NewLogSMS returns a logging SMSSender for local runs.
func NewLogSMS(log *zap.Logger) *LogSMS {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSMS{log: log}
}

// SendSMS implements SMSSender.
func (l *LogSMS) SendSMS(_ context.Context, phone, text string) error {
	l.log.Info("sent a SMS", zap.String("phone", phone), zap.String("text", text))
	return nil
}

var (
	_ EmailSender = (*LogEmail)(nil)
	_ SMSSender   = (*LogSMS)(nil)
	_ EmailSender = (*SES)(nil)
	_ SMSSender   = (*SMSGateway)(nil)
)
