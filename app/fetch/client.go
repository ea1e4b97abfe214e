package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	// MaxBodySize caps how much of a response body is read.
	MaxBodySize = 5 << 20

	breakerFailures = 3
	breakerCooldown = 5 * time.Minute
)

type Options struct {
	Timeout   time.Duration
	UserAgent string
	// RequestsPerSecond limits request starts across all hosts. Zero disables it.
	RequestsPerSecond float64
}

// Client performs best-effort GET requests. Any failure is logged and
// reported as an empty body.
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func NewClient(opts Options) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		userAgent:  opts.UserAgent,
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c
}

// Fetch returns the body at rawURL, or nil on any error, non-2xx status or
// open circuit for the host.
func (c *Client) Fetch(ctx context.Context, rawURL string) []byte {
	data, err := c.get(ctx, rawURL)
	if err != nil {
		slog.Warn("Fetch failed", "url", rawURL, "error", err)
		return nil
	}
	return data
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	result, err := c.breaker(u.Host).Execute(func() (interface{}, error) {
		return c.do(ctx, rawURL)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("host %s temporarily skipped: %w", u.Host, err)
		}
		return nil, err
	}

	return result.([]byte), nil
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// breaker returns the circuit breaker for host, creating it on first use.
func (c *Client) breaker(host string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[host]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Host circuit state changed", "host", name, "from", from.String(), "to", to.String())
		},
	})
	c.breakers[host] = cb
	return cb
}
