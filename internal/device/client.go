package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// Client defaults.
const (
	DefaultTimeout = 5 * time.Second
	DefaultRetries = 2
	defaultBackoff = 200 * time.Millisecond
	setPath        = "/set"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetries sets how many times a request that failed in transit is
// retried. Rejections are never retried.
func WithRetries(n uint64) Option {
	return func(c *Client) { c.retries = n }
}

// WithBackoff sets the base delay of the exponential retry backoff.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithLogger sets the logger reporting each change.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// Client sends setting changes to one device.
type Client struct {
	base    *url.URL
	http    *http.Client
	retries uint64
	backoff time.Duration
	log     zerolog.Logger
}

// NewClient creates a Client for the device at baseURL, e.g.
// "http://192.168.4.1".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing device URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("device URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("device URL %q: missing host", baseURL)
	}

	c := &Client{
		base:    u,
		http:    &http.Client{Timeout: DefaultTimeout},
		retries: DefaultRetries,
		backoff: defaultBackoff,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetURL returns the request URL for one change.
func (c *Client) SetURL(s Setting) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + setPath
	u.RawQuery = url.Values{s.Key: []string{s.Value}}.Encode()
	return u.String()
}

// Set sends each change in its own request, in order. Every change is
// attempted; the returned error joins one error per failed change.
func (c *Client) Set(ctx context.Context, changes []Setting) error {
	var errs []error
	for _, s := range changes {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := c.setOne(ctx, s); err != nil {
			c.log.Error().Err(err).Str("setting", s.String()).Msg("setting not applied")
			errs = append(errs, err)
			continue
		}
		c.log.Info().Str("setting", s.String()).Msg("setting applied")
	}
	return errors.Join(errs...)
}

// setOne sends a single change, retrying transport failures only.
func (c *Client) setOne(ctx context.Context, s Setting) error {
	target := c.SetURL(s)
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrNetwork, s, err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Debug().Err(err).Str("url", target).Msg("retrying setting")
			return retry.RetryableError(fmt.Errorf("%w: %s: %v", ErrNetwork, s, err))
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("%w: %s: %s", ErrSettingRejected, s, resp.Status)
		}
		return nil
	})
}
