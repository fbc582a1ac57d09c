// Package relay forwards unmatched user input as a command to the remote
// backend and returns its reply. One request per submission; no retry.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"katana/pkg/logger"
)

const defaultTimeout = 30 * time.Second

type commandPayload struct {
	Command string `json:"command"`
}

// Reply carries the backend's JSON response unmodified. No reply schema is
// enforced beyond being valid JSON.
type Reply struct {
	Raw json.RawMessage
}

// Text extracts a displayable string from the reply: the first of the common
// reply fields when the body is an object, the string itself when the body is
// a bare JSON string, otherwise the raw JSON.
func (r *Reply) Text() string {
	var s string
	if err := json.Unmarshal(r.Raw, &s); err == nil {
		return s
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(r.Raw, &obj); err == nil {
		for _, key := range []string{"reply", "response", "message", "text"} {
			raw, ok := obj[key]
			if !ok {
				continue
			}
			if err := json.Unmarshal(raw, &s); err == nil {
				return s
			}
		}
	}
	return strings.TrimSpace(string(r.Raw))
}

// Client posts commands to a single configured endpoint. Requests are
// serialized: a second submission waits for the in-flight one, so replies
// always arrive in submission order.
type Client struct {
	endpoint   string
	httpClient *http.Client
	mu         sync.Mutex
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send issues one POST with body {"command": <text>} and returns the parsed
// reply. Failures surface as *NetworkError or *ParseError; the caller decides
// how to present them.
func (c *Client) Send(ctx context.Context, command string) (*Reply, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("relay endpoint not configured")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	logger.DebugCF("relay", "Forwarding command", map[string]interface{}{
		"endpoint":     c.endpoint,
		"command_size": len(command),
	})

	jsonData, err := json.Marshal(commandPayload{Command: command})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{Status: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	if !json.Valid(body) {
		return nil, &ParseError{Err: fmt.Errorf("invalid JSON body: %s", truncate(string(body), 80))}
	}

	return &Reply{Raw: json.RawMessage(body)}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
