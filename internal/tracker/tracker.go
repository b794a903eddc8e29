package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Catcher receives non-fatal processing faults together with the payload that
// triggered them. Implementations must never fail the caller: reporting an
// error is best-effort.
type Catcher interface {
	Send(ctx context.Context, err error, payload map[string]any)
}

// Nop discards every event. Used when no catcher endpoint is configured.
type Nop struct{}

func (Nop) Send(context.Context, error, map[string]any) {}

// HTTPCatcher posts events to a Hawk-style collector endpoint.
type HTTPCatcher struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPCatcher creates a catcher posting to endpoint. Returns Nop when
// endpoint is empty.
func NewHTTPCatcher(endpoint, token string, logger *slog.Logger) Catcher {
	if endpoint == "" {
		return Nop{}
	}
	return &HTTPCatcher{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type event struct {
	Token       string       `json:"token"`
	CatcherType string       `json:"catcherType"`
	Payload     eventPayload `json:"payload"`
}

type eventPayload struct {
	Title   string         `json:"title"`
	Context map[string]any `json:"context,omitempty"`
}

// Send posts the event and logs delivery failures instead of returning them.
func (c *HTTPCatcher) Send(ctx context.Context, err error, payload map[string]any) {
	body, marshalErr := json.Marshal(event{
		Token:       c.token,
		CatcherType: "errors/go",
		Payload: eventPayload{
			Title:   err.Error(),
			Context: payload,
		},
	})
	if marshalErr != nil {
		c.logger.Error("tracker: marshal event", "error", marshalErr.Error())
		return
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if reqErr != nil {
		c.logger.Error("tracker: create request", "error", reqErr.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		c.logger.Error("tracker: send event", "error", doErr.Error())
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error("tracker: collector rejected event",
			"status", resp.StatusCode,
			"body", string(respBody),
		)
	}
}
