// Package fetch is the crawl engine's network substrate: a worker pool that
// drains an in-memory request queue, retrying and rate-limiting each fetch.
// Callers never block on Emit; handlers run inside workers and may emit
// follow-up requests.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/minwoopark/infomore/internal/ratelimit"
)

// Handler consumes one fetched response body.
type Handler func(ctx context.Context, body []byte)

// Request is one fetch intent with the headers and cookies the source site
// expects for that document type.
type Request struct {
	URL     string
	Headers map[string]string
	Cookies map[string]string
	Handler Handler
}

type Options struct {
	Workers      int
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	RateLimitMin time.Duration
	RateLimitMax time.Duration
	UserAgent    string
}

// Client carries the fetch state for one crawl run. A Client is not
// reusable: once Run returns the queue is closed.
type Client struct {
	http      *http.Client
	queue     *requestQueue
	limiter   ratelimit.RateLimiter
	logger    *slog.Logger
	userAgent string

	workers    int
	maxRetries int
	retryDelay time.Duration

	pending  sync.WaitGroup
	failures atomic.Int64
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	return &Client{
		http:       &http.Client{Timeout: opts.Timeout},
		queue:      newRequestQueue(),
		limiter:    ratelimit.NewSimpleRateLimiter(opts.RateLimitMin, opts.RateLimitMax),
		logger:     logger.With("component", "fetch"),
		userAgent:  opts.UserAgent,
		workers:    workers,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
	}
}

// Emit enqueues a fetch. It never blocks on the network; the request is
// picked up by a worker later.
func (c *Client) Emit(req Request) {
	c.pending.Add(1)
	if err := c.queue.Push(&req); err != nil {
		c.pending.Done()
		c.logger.Error("emit after queue close", "url", req.URL)
	}
}

// Run starts the workers and blocks until every emitted request, including
// those emitted by handlers along the way, has been processed.
func (c *Client) Run(ctx context.Context) error {
	var workers sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			c.worker(ctx)
		}()
	}

	go func() {
		drained := make(chan struct{})
		go func() {
			c.pending.Wait()
			close(drained)
		}()
		select {
		case <-drained:
		case <-ctx.Done():
		}
		c.queue.Close()
	}()

	workers.Wait()
	return ctx.Err()
}

// Failures reports how many requests exhausted their retries.
func (c *Client) Failures() int64 {
	return c.failures.Load()
}

func (c *Client) worker(ctx context.Context) {
	for {
		req, err := c.queue.Pop(ctx)
		if err != nil {
			return
		}
		c.process(ctx, req)
		c.pending.Done()
	}
}

func (c *Client) process(ctx context.Context, req *Request) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return
		}

		body, err := c.fetch(ctx, req)
		if err != nil {
			lastErr = err
			c.logger.Debug("fetch attempt failed",
				"url", req.URL, "attempt", attempt, "error", err)
			continue
		}

		req.Handler(ctx, body)
		return
	}

	c.failures.Add(1)
	c.logger.Error("fetch failed", "url", req.URL, "error", lastErr)
}

func (c *Client) fetch(ctx context.Context, req *Request) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	for name, value := range req.Cookies {
		httpReq.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
