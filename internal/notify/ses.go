package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"github.com/and161185/lingua-auth/internal/errs"
)

const charset = "UTF-8"

// sesAPI is the subset of *sesv2.Client used here.
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SES sends email through Amazon SES v2.
type SES struct {
	api sesAPI
	log *zap.Logger
}

// SESOptions configures NewSES.
type SESOptions struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// NewSES loads AWS configuration and builds an SES sender.
// Static credentials are used when both keys are set.
func NewSES(ctx context.Context, o SESOptions, log *zap.Logger) (*SES, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(o.Region)}
	if o.AccessKeyID != "" && o.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSESWithClient(sesv2.NewFromConfig(cfg), log), nil
}

// NewSESWithClient wraps an existing client.
func NewSESWithClient(api sesAPI, log *zap.Logger) *SES {
	if log == nil {
		log = zap.NewNop()
	}
	return &SES{api: api, log: log}
}

// SendEmail implements EmailSender.
func (s *SES) SendEmail(ctx context.Context, m Email) error {
	body := &types.Body{Text: &types.Content{Data: aws.String(m.Text), Charset: aws.String(charset)}}
	if m.HTML != "" {
		body.Html = &types.Content{Data: aws.String(m.HTML), Charset: aws.String(charset)}
	}
	in := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.From),
		Destination:      &types.Destination{ToAddresses: m.To},
		ReplyToAddresses: m.ReplyTo,
		Content: &types.EmailContent{Simple: &types.Message{
			Subject: &types.Content{Data: aws.String(m.Subject), Charset: aws.String(charset)},
			Body:    body,
		}},
	}
	if _, err := s.api.SendEmail(ctx, in); err != nil {
		s.log.Error("email send error occurred", zap.Strings("to", m.To), zap.Error(err))
		return fmt.Errorf("%w: %v", errs.ErrEmailSendFailed, err)
	}
	return nil
}
