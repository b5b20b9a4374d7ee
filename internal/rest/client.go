// Package rest is the HTTP client for the task service API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource yields the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL     string
	http        *http.Client
	tokens      TokenSource
	credentials bool
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithCredentials asks the browser fetch transport to send cookies on
// cross-origin requests. It has no effect outside WASM.
func WithCredentials() Option {
	return func(c *Client) { c.credentials = true }
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the body shape of /users and /tasks responses.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	User    json.RawMessage `json:"user"`
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	auth        bool
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return bytes.NewReader(b), nil
}

// do sends the request and returns the raw response body of a 2xx reply.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	var token string
	if r.auth {
		if c.tokens != nil {
			token = c.tokens.Token()
		}
		if token == "" {
			return nil, ErrNoSession
		}
	}

	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.credentials {
		req.Header.Set("js.fetch:credentials", "include")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: NetworkMessage, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: NetworkMessage, Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, rejection(resp.StatusCode, body)
	}
	return body, nil
}

// ErrNoSession is returned by authenticated calls made without a token.
var ErrNoSession = ValidationError("You are not signed in")

func rejection(status int, body []byte) *Error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Kind: KindRejected, Status: status, Message: msg}
}

// call performs an enveloped request, decoding data into out when non-nil.
func (c *Client) call(ctx context.Context, r request, out any) (string, error) {
	body, err := c.do(ctx, r)
	if err != nil {
		return "", err
	}
	var env envelope
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out != nil {
		data := env.Data
		if len(data) == 0 || string(data) == "null" {
			data = env.User
		}
		if len(data) > 0 && string(data) != "null" {
			if err := json.Unmarshal(data, out); err != nil {
				return env.Message, fmt.Errorf("decode response data: %w", err)
			}
		}
	}
	return env.Message, nil
}

// raw performs a request whose body is the resource itself.
func (c *Client) raw(ctx context.Context, r request, out any) error {
	body, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func pathID(prefix, id string) string {
	return prefix + url.PathEscape(id)
}

var errMissingData = errors.New("response carried no data")
