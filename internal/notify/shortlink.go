package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
)

// LinkConfig describes the app deep links embedded in messages.
type LinkConfig struct {
	Root string // dynamic link domain, e.g. https://example.page.link
	Link string // app web origin the deep link points at
	APN  string
	AFL  string
	ISI  string
	IBI  string
	IFL  string
	EFL  int

	APIURL string // short-link endpoint; empty disables shortening
	APIKey string
}

// LongLink builds a long dynamic link for pathAndQuery.
func (c LinkConfig) LongLink(pathAndQuery string) string {
	return fmt.Sprintf("%s/?link=%s%s&apn=%s&afl=%s&isi=%s&ibi=%s&ifl=%s",
		c.Root, c.Link, pathAndQuery, c.APN, c.AFL, c.ISI, c.IBI, c.IFL)
}

// Shortener turns a deep link path into a short link.
type Shortener interface {
	Shorten(ctx context.Context, pathAndQuery string) (string, error)
}

// DynamicLinks calls a Firebase-style short-link API.
type DynamicLinks struct {
	cfg     LinkConfig
	client  *http.Client
	backoff func() retry.Backoff
}

// NewDynamicLinks builds a shortener. A nil client uses a 10s timeout client.
func NewDynamicLinks(cfg LinkConfig, client *http.Client) *DynamicLinks {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &DynamicLinks{cfg: cfg, client: client, backoff: defaultBackoff}
}

type dynamicLinkRequest struct {
	DynamicLinkInfo struct {
		DomainURIPrefix string `json:"domainUriPrefix"`
		Link            string `json:"link"`
		AndroidInfo     struct {
			PackageName  string `json:"androidPackageName"`
			FallbackLink string `json:"androidFallbackLink"`
		} `json:"androidInfo"`
		IOSInfo struct {
			BundleID     string `json:"iosBundleId"`
			FallbackLink string `json:"iosFallbackLink"`
			AppStoreID   string `json:"iosAppStoreId"`
		} `json:"iosInfo"`
		NavigationInfo struct {
			EnableForcedRedirect int `json:"enableForcedRedirect"`
		} `json:"navigationInfo"`
	} `json:"dynamicLinkInfo"`
	Suffix struct {
		Option string `json:"option"`
	} `json:"suffix"`
}

var errNoShortLink = errors.New("shortLink is not found")

// Shorten implements Shortener. 5xx responses are retried up to three times.
func (d *DynamicLinks) Shorten(ctx context.Context, pathAndQuery string) (string, error) {
	var in dynamicLinkRequest
	in.DynamicLinkInfo.DomainURIPrefix = d.cfg.Root
	in.DynamicLinkInfo.Link = d.cfg.Link + pathAndQuery
	in.DynamicLinkInfo.AndroidInfo.PackageName = d.cfg.APN
	in.DynamicLinkInfo.AndroidInfo.FallbackLink = d.cfg.AFL
	in.DynamicLinkInfo.IOSInfo.BundleID = d.cfg.IBI
	in.DynamicLinkInfo.IOSInfo.FallbackLink = d.cfg.IFL
	in.DynamicLinkInfo.IOSInfo.AppStoreID = d.cfg.ISI
	in.DynamicLinkInfo.NavigationInfo.EnableForcedRedirect = d.cfg.EFL
	in.Suffix.Option = "SHORT"
	payload, err := json.Marshal(in)
	if err != nil {
		return "", err
	}

	endpoint := d.cfg.APIURL
	if d.cfg.APIKey != "" {
		endpoint += "?key=" + url.QueryEscape(d.cfg.APIKey)
	}

	return retry.DoValue(ctx, d.backoff(), func(ctx context.Context) (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := d.client.Do(req)
		if err != nil {
			return "", retry.RetryableError(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return "", retry.RetryableError(fmt.Errorf("short link status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("short link status %d", resp.StatusCode)
		}
		var out struct {
			ShortLink string `json:"shortLink"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", fmt.Errorf("decode short link: %w", err)
		}
		if out.ShortLink == "" {
			return "", errNoShortLink
		}
		return out.ShortLink, nil
	})
}
