package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
)

// Request describes one JSON API call. Body is kept as bytes so a retry
// resubmits the original payload unchanged.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Client executes JSON requests with per-attempt timeout, exponential
// backoff retry and the closed APIError taxonomy.
type Client struct {
	http       *http.Client
	maxRetries int
	baseDelay  time.Duration
	limiter    *rate.Limiter
}

type Option func(*Client)

// WithLimiter installs a shared rate gate honored before every attempt.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithBaseDelay overrides the backoff base (tests use a short one).
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) { c.baseDelay = d }
}

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		http:       &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes req and decodes a 2xx body into out (skipped when out is nil).
// Retries 429 and transport failures up to maxRetries with
// baseDelay * 2^attempt backoff; never retries past ctx cancellation.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	var lastErr *APIError

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.baseDelay * (1 << (attempt - 1))
			log.Printf("API_RETRY attempt=%d backoff=%s url=%s", attempt, backoff, redactURL(req.URL))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return newTransportError(ctx.Err())
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return newTransportError(err)
			}
		}

		err := c.doOnce(ctx, req, out)
		if err == nil {
			return nil
		}

		lastErr = err
		if !err.Retryable() || ctx.Err() != nil {
			return err
		}
	}

	return &APIError{
		Kind:       lastErr.Kind,
		Message:    "retries exhausted: " + lastErr.Message,
		StatusCode: lastErr.StatusCode,
		Cause:      lastErr,
	}
}

func (c *Client) doOnce(ctx context.Context, req Request, out any) *APIError {
	target := req.URL
	if len(req.Query) > 0 {
		target = req.URL + "?" + req.Query.Encode()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return &APIError{Kind: KindUnknownStatus, Message: "invalid request", Cause: err}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Set(k, v)
		}
	}

	log.Printf("API_REQUEST method=%s url=%s bytes=%d", req.Method, redactURL(target), len(req.Body))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// Caller cancellation is terminal, not a transient transport failure.
		if errors.Is(err, context.Canceled) {
			return newTransportError(context.Canceled)
		}
		return newTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return newTransportError(err)
	}

	log.Printf("API_RESPONSE status=%d bytes=%d url=%s", resp.StatusCode, len(raw), redactURL(target))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fromStatus(resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return newDecodingError(err)
	}

	return nil
}

// redactURL blanks credential-bearing query parameters before logging.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for _, p := range []string{"key", "cx"} {
		if q.Has(p) {
			q.Set(p, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
