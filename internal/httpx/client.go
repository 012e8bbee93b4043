package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/mo-hanxuan/crypto-converter/internal/cache"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StatusError reports a non-success HTTP status from a provider endpoint.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client wraps outbound GETs with global request spacing and a short-lived
// response cache. One Client instance is shared by every provider adapter
// so the spacing is global across hosts, a deliberate simplification for
// an interactive, low-volume engine.
//
// Spacing applies only to actual network dispatch: cache hits return
// without touching the limiter.
type Client struct {
	http    *http.Client
	store   cache.Store
	ttl     time.Duration
	spacing time.Duration
	timeout time.Duration
	tracer  trace.Tracer

	mu           sync.Mutex
	nextDispatch time.Time
}

type Options struct {
	Store   cache.Store
	TTL     time.Duration // response cache lifetime
	Spacing time.Duration // minimum gap between network dispatches
	Timeout time.Duration // absolute per-request timeout
	Tracer  trace.Tracer
}

func NewClient(opts Options) *Client {
	if opts.Store == nil {
		opts.Store = cache.NewMemory()
	}
	if opts.TTL <= 0 {
		opts.TTL = 60 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		store:   opts.Store,
		ttl:     opts.TTL,
		spacing: opts.Spacing,
		timeout: opts.Timeout,
		tracer:  opts.Tracer,
	}
}

// Get fetches url, serving from cache when a non-expired entry exists.
// Concurrent callers reserve dispatch slots so back-to-back requests stay
// at least the configured spacing apart.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "httpx.get")
		span.SetAttributes(attribute.String("url", url))
		defer span.End()
	}

	key := "GET " + url
	if payload, ok := c.store.Get(ctx, key); ok {
		return payload, nil
	}

	if err := c.waitTurn(ctx); err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: truncate(body, 200)}
	}

	c.store.Set(ctx, key, body, c.ttl)
	return body, nil
}

// waitTurn reserves the next dispatch slot and sleeps until it arrives.
// Reserving under the lock keeps concurrent callers spaced correctly.
func (c *Client) waitTurn(ctx context.Context) error {
	if c.spacing <= 0 {
		return nil
	}

	c.mu.Lock()
	now := time.Now()
	slot := c.nextDispatch
	if slot.Before(now) {
		slot = now
	}
	c.nextDispatch = slot.Add(c.spacing)
	c.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
