package feedimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
	"github.com/orgball2608/giveaway-telegram-bot/internal/feed"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/config"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/retry"
	"go.uber.org/fx"
)

const (
	userAgent       = "GamerPower-Telegram-Bot/1.0"
	maxResponseSize = 8 << 20
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type FeedImpl struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	retry   retry.Config
	logger  logger.Logger
}

var _ feed.Client = (*FeedImpl)(nil)

func New(opts Opts) *FeedImpl {
	return NewWithClient(opts.Config.Feed.BaseURL, opts.Config.Feed.Timeout, nil, opts.Logger)
}

// NewWithClient builds a feed client against baseURL. A nil client gets a
// pooled transport with short dial and TLS timeouts.
func NewWithClient(baseURL string, timeout time.Duration, client *http.Client, log logger.Logger) *FeedImpl {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &FeedImpl{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  client,
		retry:   retry.DefaultConfig(),
		logger:  log.WithComponent("GamerPowerFeed"),
	}
}

func (f *FeedImpl) Fetch(ctx context.Context, platform, category string) []domain.Offer {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	endpoint := f.endpoint(platform, category)
	var body []byte
	op := func() error {
		var err error
		body, err = f.get(ctx, endpoint)
		return err
	}
	if err := retry.Do(ctx, f.logger, "FetchGiveaways", op, f.retry); err != nil {
		f.logger.Error("GamerPower fetch failed", "url", endpoint, "error", err)
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		f.logger.Warn("GamerPower response is not an array, treating as empty", "url", endpoint, "error", err)
		return nil
	}

	offers := make([]domain.Offer, 0, len(items))
	for i, raw := range items {
		var r record
		if err := json.Unmarshal(raw, &r); err != nil {
			f.logger.Warn("Skipping malformed giveaway record", "index", i, "error", err)
			continue
		}
		offers = append(offers, normalize(r, raw))
	}

	f.logger.Info("Fetched giveaways", "platform", platform, "type", category, "count", len(offers))
	return offers
}

func (f *FeedImpl) endpoint(platform, category string) string {
	params := url.Values{}
	if platform != "" {
		params.Set("platform", platform)
	}
	if category != "" {
		params.Set("type", category)
	}
	endpoint := f.baseURL + "/giveaways"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	return endpoint
}

// get performs one attempt. Client errors and unreadable bodies are permanent;
// network failures and 5xx are retried.
func (f *FeedImpl) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}
	defer safeClose(resp.Body, f.logger)

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("upstream returned %s", resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, retry.Permanent(fmt.Errorf("upstream returned %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("read response: %w", err))
	}
	return body, nil
}

func safeClose(closer io.ReadCloser, log logger.Logger) {
	if err := closer.Close(); err != nil {
		log.Error("Error closing response body", "error", err)
	}
}
