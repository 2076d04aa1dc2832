package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sdejongh/sidediff/internal/platform"
	"github.com/sdejongh/sidediff/pkg/ratelimit"
)

const (
	// DefaultMaxBytes caps the size of a fetched text
	DefaultMaxBytes int64 = 16 << 20
	// DefaultTimeout bounds a single remote fetch
	DefaultTimeout = 30 * time.Second
)

// RemoteConfig configures a Remote fetcher
type RemoteConfig struct {
	// BaseURL is the counterpart host, e.g. https://peer:8790
	BaseURL string
	// Secret is the shared key used to sign requests
	Secret []byte
	// Timeout bounds each request (0 = DefaultTimeout)
	Timeout time.Duration
	// Limiter throttles response bodies (nil = unlimited)
	Limiter *ratelimit.Limiter
	// MaxBytes caps the body size (0 = DefaultMaxBytes)
	MaxBytes int64
	// Client overrides the HTTP client
	Client *http.Client
}

// Remote fetches texts from a counterpart host serving a Handler
type Remote struct {
	base     *url.URL
	secret   []byte
	client   *http.Client
	limiter  *ratelimit.Limiter
	maxBytes int64
	now      func() time.Time
}

// NewRemote creates a remote fetcher
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("remote URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid remote URL %q: scheme must be http or https", cfg.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid remote URL %q: missing host", cfg.BaseURL)
	}
	if len(cfg.Secret) == 0 {
		return nil, errors.New("remote secret is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return &Remote{
		base:     base,
		secret:   cfg.Secret,
		client:   client,
		limiter:  cfg.Limiter,
		maxBytes: maxBytes,
		now:      time.Now,
	}, nil
}

// Name identifies the fetcher
func (r *Remote) Name() string {
	return r.base.Host
}

// Fetch retrieves the text at path from the counterpart host
func (r *Remote) Fetch(ctx context.Context, path string) ([]byte, error) {
	rel, err := platform.CleanRelative(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	target := *r.base
	target.Path = strings.TrimSuffix(r.base.Path, "/") + RawPrefix + rel
	target.RawPath = ""
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	SignRequest(req, r.secret, rel, r.now())

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", rel, r.base.Host, err)
	}
	body := ratelimit.NewReadCloser(ctx, resp.Body, r.limiter)
	defer body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{Host: r.base.Host, Path: rel, StatusCode: resp.StatusCode}
	}
	if resp.ContentLength > r.maxBytes {
		return nil, fmt.Errorf("fetch %s from %s: %w (%d bytes)", rel, r.base.Host, ErrTooLarge, resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(body, r.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", rel, r.base.Host, err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, fmt.Errorf("fetch %s from %s: %w", rel, r.base.Host, ErrTooLarge)
	}
	return data, nil
}

// Close releases idle connections
func (r *Remote) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
