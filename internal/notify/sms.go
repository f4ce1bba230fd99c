package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/and161185/lingua-auth/internal/errs"
)

// SMSGateway posts messages to an HTTP SMS gateway as a form.
type SMSGateway struct {
	endpoint string
	username string
	password string
	client   *http.Client
	backoff  func() retry.Backoff
	log      *zap.Logger
}

// NewSMSGateway builds a gateway client. A nil client uses a 10s timeout client.
func NewSMSGateway(endpoint, username, password string, client *http.Client, log *zap.Logger) *SMSGateway {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SMSGateway{
		endpoint: endpoint,
		username: username,
		password: password,
		client:   client,
		backoff:  defaultBackoff,
		log:      log,
	}
}

func defaultBackoff() retry.Backoff {
	return retry.WithMaxRetries(3, retry.NewExponential(100*time.Millisecond))
}

// SendSMS implements SMSSender. Transport errors and 5xx responses are retried.
func (g *SMSGateway) SendSMS(ctx context.Context, phone, text string) error {
	form := url.Values{
		"username":     {g.username},
		"password":     {g.password},
		"mobilenumber": {phone},
		"smstext":      {text},
	}
	err := retry.Do(ctx, g.backoff(), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := g.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		g.log.Info("sent a SMS", zap.Int("status", resp.StatusCode), zap.ByteString("response", body))

		switch {
		case resp.StatusCode == http.StatusOK:
			return nil
		case resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("gateway status %d", resp.StatusCode))
		default:
			return fmt.Errorf("gateway status %d", resp.StatusCode)
		}
	})
	if err != nil {
		g.log.Error("SMS bounce occurred", zap.String("phone", phone), zap.Error(err))
		return fmt.Errorf("%w: %v", errs.ErrSMSSendFailed, err)
	}
	return nil
}
