// Package api is the client of the remote salon API.
//
// The client never navigates or touches session storage. A 401 on a call that
// requires authentication comes back as *UnauthorizedError; every other HTTP
// status is decoded as an ordinary payload and the caller inspects its
// success/error fields.
package api

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

// SessionHeader carries the bearer token on every request made with one.
const SessionHeader = "X-Session-Token"

const maxResponseBytes = 4 << 20

// Endpoint names a resource family of the remote API.
type Endpoint string

const (
	EndpointAuth     Endpoint = "auth"
	EndpointBookings Endpoint = "bookings"
	EndpointReviews  Endpoint = "reviews"
	EndpointFeedback Endpoint = "feedback"
)

// Config describes where the remote API lives.
type Config struct {
	BaseURL    string
	Paths      map[Endpoint]string
	Timeout    time.Duration
	HTTPClient *http.Client
	Observer   Observer
}

// Observer receives one notification per finished call. Status is 0 when the
// call failed before a response arrived.
type Observer interface {
	ObserveAPICall(endpoint, method string, status int, elapsed time.Duration)
}

// TokenSource yields the session token to attach, or "" when there is none.
type TokenSource interface {
	Token() string
}

// Client is safe for concurrent use; bind it to a visitor with As.
type Client struct {
	base     *url.URL
	paths    map[Endpoint]string
	http     *http.Client
	observer Observer
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", cfg.BaseURL)
	}
	paths := make(map[Endpoint]string, 4)
	for _, endpoint := range []Endpoint{EndpointAuth, EndpointBookings, EndpointReviews, EndpointFeedback} {
		path := strings.Trim(cfg.Paths[endpoint], "/")
		if path == "" {
			return nil, fmt.Errorf("api: path for endpoint %q missing", endpoint)
		}
		paths[endpoint] = path
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{base: base, paths: paths, http: httpClient, observer: cfg.Observer}, nil
}

// As binds the client to a token source. A nil source sends no token.
func (c *Client) As(tokens TokenSource) *Caller {
	return &Caller{client: c, tokens: tokens}
}

// Caller issues requests on behalf of one visitor.
type Caller struct {
	client *Client
	tokens TokenSource
}

func (c *Client) endpointURL(endpoint Endpoint, query url.Values) string {
	target := *c.base
	target.Path = target.Path + "/" + c.paths[endpoint]
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}
	return target.String()
}

func (c *Client) observe(endpoint Endpoint, method string, status int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveAPICall(string(endpoint), method, status, time.Since(start))
}

type call struct {
	endpoint     Endpoint
	method       string
	query        url.Values
	body         any
	requiresAuth bool
}

func (c *Caller) do(ctx context.Context, in call, out any) error {
	var payload io.Reader
	if in.body != nil {
		data, err := json.Marshal(in.body)
		if err != nil {
			return fmt.Errorf("api: encode %s body: %w", in.endpoint, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, c.client.endpointURL(in.endpoint, in.query), payload)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", in.method, in.endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set(SessionHeader, token)
		}
	}

	start := time.Now()
	resp, err := c.client.http.Do(req)
	if err != nil {
		c.client.observe(in.endpoint, in.method, 0, start)
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, in.method, in.endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.client.observe(in.endpoint, in.method, resp.StatusCode, start)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %w", ErrTransport, in.method, in.endpoint, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && in.requiresAuth {
		return &UnauthorizedError{Endpoint: in.endpoint, Message: errorMessage(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s %s (status %d): %w", ErrDecode, in.method, in.endpoint, resp.StatusCode, err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.Error
}

// IsTransient reports whether err came from the network or from an
// unreadable answer rather than from the API's own verdict.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrDecode)
}
