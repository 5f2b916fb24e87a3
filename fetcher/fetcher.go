// Package fetcher retrieves listing pages and parses them into goquery
// documents, retrying transient failures a bounded number of times.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/festa/logger"
	"golang.org/x/time/rate"
)

// ErrExhausted is wrapped by the error returned once every attempt for a URL
// has failed. Callers treat it as "no more data at this cursor".
var ErrExhausted = errors.New("fetch attempts exhausted")

// maxResponseBodyBytes limits the size of a fetched page.
const maxResponseBodyBytes = 10 * 1024 * 1024

// Fetcher retrieves and parses one page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Config controls request timeouts, retries and throttling.
type Config struct {
	// Timeout bounds a single attempt.
	Timeout time.Duration `yaml:"timeout"`
	// Attempts is the total number of tries per URL, including the first.
	Attempts int `yaml:"attempts"`
	// RetryDelay is the fixed pause between attempts.
	RetryDelay time.Duration `yaml:"retry_delay"`
	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent"`
	// RequestsPerSecond throttles this fetcher's own request rate. Zero
	// disables throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// DefaultConfig returns a 10 second timeout, 3 attempts and a 2 second
// delay between attempts.
func DefaultConfig() Config {
	return Config{
		Timeout:    10 * time.Second,
		Attempts:   3,
		RetryDelay: 2 * time.Second,
		UserAgent:  "festa/1.0 (regional news collector)",
	}
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s", e.Code, e.Status)
}

// HTTPFetcher is the production Fetcher. It is safe for concurrent use; each
// adapter normally owns its own instance.
type HTTPFetcher struct {
	client  *http.Client
	config  Config
	limiter *rate.Limiter
	log     logger.Interface
}

// New creates an HTTPFetcher. Zero or negative config fields fall back to
// DefaultConfig, so every fetcher pauses between attempts.
func New(config Config, log logger.Interface) *HTTPFetcher {
	defaults := DefaultConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.Attempts <= 0 {
		config.Attempts = defaults.Attempts
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaults.RetryDelay
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if log == nil {
		log = logger.NewNoOp()
	}

	f := &HTTPFetcher{
		client: &http.Client{Timeout: config.Timeout},
		config: config,
		log:    log,
	}
	if config.RequestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	return f
}

// Config returns the effective configuration.
func (f *HTTPFetcher) Config() Config {
	return f.config
}

// Fetch performs a GET with bounded retries. On success it returns the
// parsed document with its Url set to the final request URL. Once attempts
// are exhausted it returns an error wrapping ErrExhausted. A cancelled
// context aborts immediately with ctx.Err().
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	var lastErr error

	for attempt := 1; attempt <= f.config.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		doc, err := f.get(ctx, url)
		if err == nil {
			return doc, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		lastErr = err

		f.log.Warn("Fetch attempt failed",
			"url", url,
			"attempt", attempt,
			"max_attempts", f.config.Attempts,
			"error", err,
		)

		if attempt == f.config.Attempts {
			break
		}

		timer := time.NewTimer(f.config.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("%w after %d attempts for %s: %w", ErrExhausted, f.config.Attempts, url, lastErr)
}

// get performs a single attempt.
func (f *HTTPFetcher) get(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodyBytes))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Url = resp.Request.URL

	return doc, nil
}
