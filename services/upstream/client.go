// Package upstream holds the HTTP clients of the backends behind the console.
package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/prefeitura-rio/gorio-admin/core"
	"github.com/prefeitura-rio/gorio-admin/core/access"
)

// Client talks JSON to one backend. The bearer token of the session found in the request
// context is forwarded.
type Client struct {
	service string
	baseURL string
	rest    *rest.Client
}

func NewClient(service, baseURL string, timeout time.Duration) *Client {
	return &Client{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		rest:    &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
	}
}

func (c *Client) send(ctx context.Context, method rest.Method, path string, query map[string]string, body interface{}) (*rest.Response, error) {
	req := rest.Request{
		Method:      method,
		BaseURL:     c.baseURL + path,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: query,
	}
	if sess, ok := access.SessionFromContext(ctx); ok && sess.Token != "" {
		req.Headers["Authorization"] = "Bearer " + sess.Token
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		req.Body = data
	}

	res, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s %s", c.service, method, path)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return nil, &core.UpstreamError{Service: c.service, StatusCode: res.StatusCode, Body: res.Body}
	}
	return res, nil
}

// sendJSON sends the request and decodes the answer into out.
func (c *Client) sendJSON(ctx context.Context, method rest.Method, path string, query map[string]string, body, out interface{}) error {
	res, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(res.Body), out); err != nil {
		return errors.Wrapf(err, "%s: decoding %s", c.service, path)
	}
	return nil
}

// raw returns the answer body untouched.
func (c *Client) raw(ctx context.Context, path string, query map[string]string) (json.RawMessage, error) {
	res, err := c.send(ctx, rest.Get, path, query, nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(res.Body)) {
		return nil, errors.Errorf("%s: invalid JSON from %s", c.service, path)
	}
	return json.RawMessage(res.Body), nil
}
