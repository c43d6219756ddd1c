// Package httpfetch performs the bounded upstream calls shared by every
// platform adapter.
package httpfetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// UserAgent is the browser User-Agent sent to every platform
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:146.0) Gecko/20100101 Firefox/146.0"

// DefaultTimeout bounds a single upstream call
const DefaultTimeout = 12 * time.Second

// maxBodyBytes caps response bodies; Codeforces submission histories are large
const maxBodyBytes = 64 << 20

// HTTPError represents a non-2xx upstream response
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// IsStatus reports whether err is an HTTPError with the given status code
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == code
}

// Config holds the settings every adapter accepts
type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	Logger     *zap.Logger
	Timeout    time.Duration
	UserAgent  string
}

// Option configures an adapter
type Option func(*Config)

// WithHTTPClient sets the HTTP client used for upstream calls
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) { c.HTTPClient = client }
}

// WithBaseURL overrides the platform's base URL
func WithBaseURL(baseURL string) Option {
	return func(c *Config) { c.BaseURL = strings.TrimRight(baseURL, "/") }
}

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithTimeout sets the per-call timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Config) { c.UserAgent = ua }
}

// NewConfig applies opts over the defaults for a platform
func NewConfig(defaultBaseURL string, opts ...Option) Config {
	cfg := Config{
		HTTPClient: http.DefaultClient,
		BaseURL:    defaultBaseURL,
		Logger:     zap.NewNop(),
		Timeout:    DefaultTimeout,
		UserAgent:  UserAgent,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return cfg
}

// Fetcher issues single upstream requests with an explicit deadline
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	logger    *zap.Logger
}

// NewFetcher builds a Fetcher from an adapter config
func NewFetcher(cfg Config) *Fetcher {
	return &Fetcher{
		client:    cfg.HTTPClient,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		logger:    cfg.Logger,
	}
}

// Get fetches url and returns the body of a 2xx response
func (f *Fetcher) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	return f.do(ctx, http.MethodGet, url, nil, headers)
}

// PostJSON posts payload as JSON and returns the body of a 2xx response
func (f *Fetcher) PostJSON(ctx context.Context, url string, payload any, headers map[string]string) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		h[k] = v
	}
	return f.do(ctx, http.MethodPost, url, raw, h)
}

func (f *Fetcher) do(ctx context.Context, method, url string, body []byte, headers map[string]string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	f.logger.Debug("Upstream request completed",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &HTTPError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return data, nil
}
