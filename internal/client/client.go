package client

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

	"shop-cli/internal/config"
	"shop-cli/internal/logging"
)

// UsernameHeader identifies the editing user to the server.
const UsernameHeader = "X-ShoppingList-Username"

var ErrTransport = errors.New("transport error")

// TransportError is any failure to complete a request: connection problems and non-2xx
// replies alike. Status is 0 when no response was received.
type TransportError struct {
	Op     string
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("%s %s: server returned %d: %s", e.Op, e.URL, e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("%s %s: server returned %d", e.Op, e.URL, e.Status)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

const maxErrorBody = 512

// Client talks JSON to one list's API base. It implements reconcile.Transport.
type Client struct {
	base     string
	username string
	http     *http.Client
	log      *logging.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l.WithComponent("client")
		}
	}
}

func New(cfg config.Config, opts ...Option) (*Client, error) {
	c := &Client{
		base:     cfg.ListURL(),
		username: strings.TrimSpace(cfg.Username),
		log:      logging.Discard(),
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	u, err := cfg.ProxyURL()
	if err != nil {
		return nil, &config.Error{Op: "parse proxy", Err: err}
	}
	if u != nil {
		tr.Proxy = http.ProxyURL(u)
	}
	c.http = &http.Client{Transport: tr}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.base }

func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.base + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &TransportError{Op: "GET", URL: u, Err: err}
	}
	return c.do(req)
}

func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	u := c.base + "/" + path
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return nil, &TransportError{Op: "POST", URL: u, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.Header.Set(UsernameHeader, c.username)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", req.Method, "url", req.URL.String(), "err", err)
		return nil, &TransportError{Op: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	c.log.Debug("request", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode, "bytes", len(b), "duration", time.Since(start))
	if err != nil {
		return nil, &TransportError{Op: req.Method, URL: req.URL.String(), Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Op:     req.Method,
			URL:    req.URL.String(),
			Status: resp.StatusCode,
			Body:   excerpt(b),
			Err:    errors.New(http.StatusText(resp.StatusCode)),
		}
	}
	return b, nil
}

func excerpt(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
