package moonraker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/valgace/acectl/internal/logging"
	"github.com/valgace/acectl/internal/state"
	"github.com/valgace/acectl/internal/urls"
	"github.com/valgace/acectl/internal/version"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// maxErrorBody bounds how much of a failed response is quoted in errors
	maxErrorBody = 256
)

// Client talks to the ACE endpoints of one Moonraker instance.
type Client struct {
	// BaseURL is the Moonraker HTTP base (e.g. "http://192.168.1.49:7125")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// UserAgent is sent with every request
	UserAgent string
}

// NewClient creates a client for the given HTTP base.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		UserAgent:  version.UserAgent(),
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// FetchStatus retrieves the current ACE status. The payload is taken from
// the result member when present, otherwise from the body itself. A body
// that is not an object, or has no status, slots or dryer, yields an error
// matching ErrInvalidStatus.
func (c *Client) FetchStatus(ctx context.Context) (*state.StatusPayload, error) {
	endpoint := c.BaseURL + urls.StatusPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewTransportError("failed to create status request", err, endpoint)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, endpoint)
	if err != nil {
		return nil, err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, NewMalformedError("failed to parse status response", err)
	}

	if raw, ok := envelope["error"]; ok && truthy(raw) {
		return nil, NewAPIError(ErrorText(raw))
	}

	payloadRaw := json.RawMessage(body)
	if raw, ok := envelope["result"]; ok && truthy(raw) {
		payloadRaw = raw
	}

	// payloadRaw is valid JSON at this point, so a parse failure means the
	// result is not an object.
	payload, err := state.ParsePayload(payloadRaw)
	if err != nil || !payload.HasStatusFields() {
		logging.Warn("Invalid status data in response",
			zap.String("endpoint", endpoint),
			zap.String("body", truncate(string(body), maxErrorBody)),
		)
		return nil, &Error{
			Type:     ErrTypeInvalidStatus,
			Message:  "response has no status, slots or dryer",
			Endpoint: endpoint,
		}
	}

	return payload, nil
}

// commandRequest is the body of a command POST.
type commandRequest struct {
	Command string         `json:"command"`
	Params  map[string]any `json:"params"`
}

// SendCommand posts a command and returns the decoded response without
// interpreting it. Non-2xx replies with a JSON body are decoded too, since
// Moonraker reports command errors in the body.
func (c *Client) SendCommand(ctx context.Context, name string, params map[string]any) (*CommandResponse, error) {
	endpoint := c.BaseURL + urls.CommandPath

	if params == nil {
		params = map[string]any{}
	}
	data, err := json.Marshal(commandRequest{Command: name, Params: params})
	if err != nil {
		return nil, NewMalformedError("failed to encode command", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, NewTransportError("failed to create command request", err, endpoint)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewTransportError("command request failed", err, endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError("failed to read command response", err, endpoint)
	}

	var out CommandResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
		}
		return nil, NewMalformedError("failed to parse command response", err)
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewTransportError("request failed", err, endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError("failed to read response body", err, endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewHTTPError(resp.StatusCode,
			fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(body)), maxErrorBody)))
	}
	return body, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
