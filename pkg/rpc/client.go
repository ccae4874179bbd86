package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-portal/components/portal"
)

var errNotAnObject = errors.New("rpc: result is not an object")

// Config configures the JSON-RPC client.
type Config struct {
	BaseURL    string
	SessionID  string
	Headers    map[string]string
	HTTPClient *http.Client
}

// Client calls model methods over JSON-RPC. It implements portal.RemoteCaller.
type Client struct {
	baseURL   string
	sessionID string
	headers   map[string]string
	client    *http.Client
	newID     func() string
}

// NewClient builds a client for the server at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("rpc: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		sessionID: cfg.SessionID,
		headers:   cfg.Headers,
		client:    httpClient,
		newID:     uuid.NewString,
	}, nil
}

var _ portal.RemoteCaller = (*Client)(nil)

// Call implements portal.RemoteCaller. The result must be a JSON object.
func (c *Client) Call(ctx context.Context, model, method string, args []any) (portal.Payload, error) {
	var payload portal.Payload
	if err := c.CallInto(ctx, model, method, args, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: %s.%s", errNotAnObject, model, method)
	}
	return payload, nil
}

// CallInto invokes model.method and decodes the result into target.
func (c *Client) CallInto(ctx context.Context, model, method string, args []any, target any) error {
	id := c.newID()
	body, err := json.Marshal(NewCallRequest(id, model, method, args))
	if err != nil {
		return fmt.Errorf("rpc: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+CallPath(model, method), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rpc: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "session_id", Value: c.sessionID})
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("rpc: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("rpc: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	var envelope Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("rpc: decode response: %w", err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if fmt.Sprint(envelope.ID) != id {
		return fmt.Errorf("rpc: response id %v does not match request %s", envelope.ID, id)
	}
	if target == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, target); err != nil {
		return fmt.Errorf("%w: %s.%s: %v", errNotAnObject, model, method, err)
	}
	return nil
}
