package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultTimeout bounds a single webhook delivery attempt.
	DefaultTimeout = 30 * time.Second

	// parseMode is the chat markup dialect the digest is rendered in.
	parseMode = "HTML"

	maxRetries     = 3
	retryBaseDelay = 1 * time.Second
)

// Notifier delivers a rendered message to the chat webhook.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// clientImpl posts form-encoded messages to a Telegram-bot webhook.
type clientImpl struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Notifier posting to endpoint.
func NewClient(endpoint string, opts ...ClientOption) Notifier {
	c := &clientImpl{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientOption is a functional option for configuring the notifier.
type ClientOption func(*clientImpl)

// WithHTTPClient overrides the HTTP client (useful for testing).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *clientImpl) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger for delivery debugging.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientImpl) {
		c.logger = logger
	}
}

func (c *clientImpl) logDebug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// APIError represents an error response from the webhook.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notifier error (HTTP %d): %s", e.StatusCode, e.Body)
}

// Send posts the message, retrying transient failures (429, 5xx) with
// exponential backoff. The message is not retried across firings; a final
// failure suppresses this cycle's delivery only.
func (c *clientImpl) Send(ctx context.Context, message string) error {
	form := "parse_mode=" + parseMode +
		"&disable_web_page_preview=True" +
		"&message=" + url.QueryEscape(message)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-1))
			c.logDebug("notifier retry", "attempt", attempt, "delay", delay.String())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form))
		if err != nil {
			return errors.Wrap(err, "create notifier request")
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = errors.Wrap(err, "deliver message")
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = errors.Wrap(err, "read notifier response")
			continue
		}

		c.logDebug("notifier response", "status", resp.StatusCode, "body_length", len(respBody))

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = apiErr
			continue
		}
		return apiErr
	}

	return errors.Wrapf(lastErr, "delivery failed after %d retries", maxRetries)
}
