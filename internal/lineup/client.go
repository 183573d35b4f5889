package lineup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultURL is where HDHomeRun tuners publish their lineup on most LANs.
	DefaultURL = "http://hdhomerun.local/lineup.json"

	requestTimeout = 10 * time.Second
	maxBodyBytes   = 10 * 1024 * 1024
)

var (
	ErrTransport = errors.New("lineup transport error")
	ErrStatus    = errors.New("lineup unexpected status")
	ErrDecode    = errors.New("lineup decode error")
)

// FetchError describes why a lineup fetch failed. Kind is one of ErrTransport,
// ErrStatus or ErrDecode and can be matched with errors.Is.
type FetchError struct {
	Kind error
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Fetcher loads a lineup once.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Channel, error)
}

// Client reads lineup.json from a single tuner.
type Client struct {
	lineupURL string
	userAgent string
	http      *http.Client
}

var _ Fetcher = (*Client)(nil)

// NewClient creates a lineup client for the given lineup.json URL.
func NewClient(lineupURL, userAgent string) (*Client, error) {
	if strings.TrimSpace(userAgent) == "" {
		return nil, errors.New("user agent is required")
	}
	if err := ValidateURL(lineupURL); err != nil {
		return nil, err
	}

	return &Client{
		lineupURL: strings.TrimSpace(lineupURL),
		userAgent: userAgent,
		http:      &http.Client{Timeout: requestTimeout},
	}, nil
}

// ValidateURL checks that raw is an absolute http(s) URL with a host.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("lineup url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse lineup url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("lineup url %q must use http or https", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("lineup url %q has no host", raw)
	}
	return nil
}

// URL returns the lineup endpoint this client reads.
func (c *Client) URL() string {
	return c.lineupURL
}

// Fetch performs one GET against the lineup endpoint and decodes the body.
// It never retries.
func (c *Client) Fetch(ctx context.Context) ([]Channel, error) {
	data, err := c.getBytes(ctx)
	if err != nil {
		return nil, err
	}

	channels, err := Decode(data)
	if err != nil {
		return nil, &FetchError{Kind: ErrDecode, URL: c.lineupURL, Err: err}
	}
	return channels, nil
}

func (c *Client) getBytes(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.lineupURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: ErrTransport, URL: c.lineupURL, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: ErrTransport, URL: c.lineupURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{Kind: ErrStatus, URL: c.lineupURL, Err: fmt.Errorf("request failed: %s", resp.Status)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &FetchError{Kind: ErrTransport, URL: c.lineupURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(data) > maxBodyBytes {
		return nil, &FetchError{Kind: ErrDecode, URL: c.lineupURL, Err: fmt.Errorf("lineup body exceeds %d MiB", maxBodyBytes>>20)}
	}
	return data, nil
}
