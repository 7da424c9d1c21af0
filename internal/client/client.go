// Package client talks to the warden REST service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrSessionExpired is returned after a 401; the stored session has been cleared.
var ErrSessionExpired = errors.New("session expired, please log in again")

// APIError is any other non-2xx answer.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status behind err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	store   SessionStore
	session Session
}

// New loads any saved session from store. A nil store keeps the session in memory.
func New(baseURL string, store SessionStore) (*Client, error) {
	if store == nil {
		store = &MemorySession{}
	}
	s, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		store:   store,
		session: s,
	}, nil
}

func (c *Client) Session() Session { return c.session }

func (c *Client) setSession(s Session) error {
	c.session = s
	return c.store.Save(s)
}

func (c *Client) clearSession() {
	c.session = Session{}
	if err := c.store.Clear(); err != nil {
		log.Printf("client: clear session: %v", err)
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, auth bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.session.Access != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Access)
	}
	return req, nil
}

// do sends in as JSON (when non-nil) and decodes the answer into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	return c.send(ctx, method, path, in, out, true)
}

func (c *Client) send(ctx context.Context, method, path string, in, out any, auth bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, body, auth)
	if err != nil {
		return err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer res.Body.Close()
	return c.handleResponse(res, out, auth)
}

// raw fetches a binary body (exports, QR codes).
func (c *Client) raw(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", path)
	}
	defer res.Body.Close()
	var b []byte
	if err := c.handleResponse(res, &b, true); err != nil {
		return nil, err
	}
	return b, nil
}

func (c *Client) handleResponse(res *http.Response, out any, auth bool) error {
	b, err := io.ReadAll(io.LimitReader(res.Body, 32<<20))
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if res.StatusCode == http.StatusUnauthorized && auth {
		c.clearSession()
		return ErrSessionExpired
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &APIError{Status: res.StatusCode, Message: errorMessage(res.StatusCode, b)}
	}
	switch dst := out.(type) {
	case nil:
	case *[]byte:
		*dst = b
	default:
		if len(b) == 0 {
			return nil
		}
		if err := json.Unmarshal(b, out); err != nil {
			return errors.Wrap(err, "decode response")
		}
	}
	return nil
}

// errorMessage prefers detail, then message, then error.
func errorMessage(status int, b []byte) string {
	var body struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &body) == nil {
		for _, s := range []string{body.Detail, body.Message, body.Error} {
			if s != "" {
				return s
			}
		}
	}
	if s := strings.TrimSpace(string(b)); s != "" && len(s) < 200 {
		return s
	}
	return http.StatusText(status)
}
