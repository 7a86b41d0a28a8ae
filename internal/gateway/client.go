// internal/gateway/client.go
//
// Package gateway is the client's remote data gateway. It talks to the API
// server over HTTP and websocket, converts responses from the storage key
// convention to the client convention and maps them into typed values.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sapmusicgroup/sap-backend/internal/casing"
)

const defaultTimeout = 30 * time.Second

// Client is safe for concurrent use. The session is replaced by Login,
// Signup and Refresh and cleared by Logout.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.RWMutex
	session *Session
}

type Option func(*Client)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSession installs a session obtained earlier.
func WithSession(s *Session) Option {
	return func(c *Client) { c.session = s }
}

// New builds a client for a server root such as "http://localhost:8080".
// The /v1 prefix is added by the client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/v1",
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns a copy of the current session, or nil.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *Client) setSession(s *Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type dbErrorDetails struct {
	Details string `json:"details"`
	Hint    string `json:"hint"`
	Code    string `json:"code"`
}

// call sends body as JSON and returns the response data converted to the
// client key convention.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body any) (any, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("gateway: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (any, error) {
	req.Header.Set("Accept", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway: read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return nil, fmt.Errorf("gateway: decode response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		return nil, decodeError(resp.StatusCode, env)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	var data any
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("gateway: decode data: %w", err)
	}
	return casing.ToCamel(data), nil
}

func decodeError(status int, env envelope) error {
	if env.Error == nil {
		return &APIError{StatusCode: status, Message: http.StatusText(status)}
	}
	if env.Error.Code == "DB_ERROR" {
		dbErr := &DBError{Message: env.Error.Message}
		var d dbErrorDetails
		if len(env.Error.Details) > 0 && json.Unmarshal(env.Error.Details, &d) == nil {
			dbErr.Details = d.Details
			dbErr.Hint = d.Hint
			dbErr.Code = d.Code
		}
		return dbErr
	}
	apiErr := &APIError{StatusCode: status, Code: env.Error.Code, Message: env.Error.Message}
	if len(env.Error.Details) > 0 {
		var details any
		if json.Unmarshal(env.Error.Details, &details) == nil {
			apiErr.Details = details
		}
	}
	return apiErr
}

// authorized fails fast when there is no session.
func (c *Client) authorized() error {
	if c.token() == "" {
		return ErrNoSession
	}
	return nil
}
