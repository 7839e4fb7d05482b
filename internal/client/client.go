// Package client talks to the job-board REST API.
//
// Client.Do is the single transport entry point: it attaches the bearer token
// from the injected session.TokenStore and, on a 401, performs exactly one
// token refresh followed by exactly one retry of the original request.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/jobboard/internal/common"
	"github.com/joseph-ayodele/jobboard/internal/session"
)

const refreshPath = "/api/token/refresh/"

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *slog.Logger
	// OnSessionExpired runs after a failed refresh has cleared the tokens.
	OnSessionExpired func(ctx context.Context)
}

// Client is safe for concurrent use. WithStore returns a copy bound to a
// different token store, so one Client can serve many sessions.
type Client struct {
	baseURL   string
	http      *http.Client
	logger    *slog.Logger
	store     session.TokenStore
	onExpired func(ctx context.Context)
}

func New(opts Options, store session.TokenStore) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = common.DefaultAPIBaseURL
	}
	return &Client{
		baseURL:   base,
		http:      hc,
		logger:    logger,
		store:     store,
		onExpired: opts.OnSessionExpired,
	}
}

// WithStore returns a shallow copy of c that reads and writes tokens in store.
func (c *Client) WithStore(store session.TokenStore) *Client {
	cp := *c
	cp.store = store
	return &cp
}

func (c *Client) Store() session.TokenStore { return c.store }

func (c *Client) BaseURL() string { return c.baseURL }

// Request is replayable: Body is kept as bytes so a retry sends it verbatim.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
	// NoRefresh returns a 401 to the caller as-is. Used by the token endpoints.
	NoRefresh bool
}

// JSON builds a request with v encoded as the body.
func JSON(method, path string, v any) (Request, error) {
	req := Request{Method: method, Path: path}
	if v == nil {
		return req, nil
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return req, fmt.Errorf("encode json: %w", err)
	}
	req.Body = bs
	return req, nil
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
	}
	return nil
}

type callState int

const (
	stateNormal callState = iota
	stateRefreshing
	stateRetried
)

func (s callState) String() string {
	switch s {
	case stateRefreshing:
		return "refreshing"
	case stateRetried:
		return "retried"
	default:
		return "normal"
	}
}

// Do sends req. Non-2xx responses other than a recoverable 401 come back as
// *APIError; an unrecoverable 401 comes back as ErrSessionExpired.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	reqID := common.RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.New().String()
	}

	state := stateNormal
	for {
		resp, err := c.send(ctx, reqID, req, state)
		if err != nil {
			return nil, err
		}
		if resp.Status != http.StatusUnauthorized || state != stateNormal || req.NoRefresh {
			if resp.Status/100 != 2 {
				return nil, newAPIError(resp.Status, resp.Body)
			}
			return resp, nil
		}

		state = stateRefreshing
		if err := c.refresh(ctx, reqID); err != nil {
			c.expire(ctx, reqID, err)
			return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		state = stateRetried
	}
}

func (c *Client) send(ctx context.Context, reqID string, r Request, state callState) (*Response, error) {
	start := time.Now()
	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		c.logger.Error("client.http.build_request_error", "req_id", reqID, "error", err)
		return nil, fmt.Errorf("build request: %w", err)
	}

	// Default headers; allow caller overrides.
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, vs := range r.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.store != nil {
		if token, ok := c.store.Access(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.Info("client.http.request",
		"req_id", reqID,
		"method", r.Method,
		"path", r.Path,
		"state", state.String(),
		"content_length", len(r.Body),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("client.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	raw, err := c.readBody(reqID, resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Info("client.http.response",
		"req_id", reqID,
		"method", r.Method,
		"path", r.Path,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: raw}, nil
}

// readBody drains and closes a response body.
func (c *Client) readBody(reqID string, body io.ReadCloser) ([]byte, error) {
	defer func() {
		if err := body.Close(); err != nil {
			c.logger.Warn("client.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}()
	raw, err := io.ReadAll(body)
	if err != nil {
		c.logger.Error("client.http.read_error", "req_id", reqID, "error", err)
		return nil, fmt.Errorf("read response: %w", err)
	}
	return raw, nil
}

// refresh exchanges the stored refresh token for a new access token and
// persists it. It bypasses Do so it can never trigger another refresh.
func (c *Client) refresh(ctx context.Context, reqID string) error {
	start := time.Now()
	if c.store == nil {
		return fmt.Errorf("no token store")
	}
	refreshToken, ok := c.store.Refresh(ctx)
	if !ok {
		c.logger.Info("client.http.refresh", "req_id", reqID, "outcome", "no_refresh_token")
		return fmt.Errorf("no refresh token")
	}

	bs, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(bs))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("client.http.refresh", "req_id", reqID, "outcome", "send_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return err
	}
	raw, err := c.readBody(reqID, resp.Body)
	if err != nil {
		c.logger.Warn("client.http.refresh", "req_id", reqID, "outcome", "read_error", "elapsed_ms", time.Since(start).Milliseconds())
		return err
	}

	if resp.StatusCode/100 != 2 {
		c.logger.Warn("client.http.refresh", "req_id", reqID, "outcome", "rejected", "status", resp.StatusCode, "elapsed_ms", time.Since(start).Milliseconds())
		return newAPIError(resp.StatusCode, raw)
	}
	var out struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || out.Access == "" {
		c.logger.Warn("client.http.refresh", "req_id", reqID, "outcome", "no_access_token")
		return ErrUnexpectedPayload
	}
	if err := c.store.SetAccess(ctx, out.Access); err != nil {
		return common.WrapError(err, "persist access token")
	}

	c.logger.Info("client.http.refresh", "req_id", reqID, "outcome", "ok", "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

func (c *Client) expire(ctx context.Context, reqID string, cause error) {
	c.logger.Warn("client.session.expired", "req_id", reqID, "error", cause)
	if c.store != nil {
		if err := c.store.Clear(ctx); err != nil {
			c.logger.Error("client.session.clear_failed", "req_id", reqID, "error", err)
		}
	}
	if c.onExpired != nil {
		c.onExpired(ctx)
	}
}
